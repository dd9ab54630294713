package controller_test

import (
	"context"
	"encoding/xml"
	"errors"
	"iter"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sourcegraph/conc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vantage-controls/vantage-go/pkg/controller"
	"github.com/vantage-controls/vantage-go/pkg/controller/mocks"
	"github.com/vantage-controls/vantage-go/pkg/model"
)

func seq(objs ...model.Object) iter.Seq2[model.Object, error] {
	return func(yield func(model.Object, error) bool) {
		for _, obj := range objs {
			if !yield(obj, nil) {
				return
			}
		}
	}
}

func failingSeq(err error, objs ...model.Object) iter.Seq2[model.Object, error] {
	return func(yield func(model.Object, error) bool) {
		for _, obj := range objs {
			if !yield(obj, nil) {
				return
			}
		}
		yield(nil, err)
	}
}

func area(vid int, name, mtime string) *model.Area {
	return &model.Area{Base: model.Base{
		XMLName: xml.Name{Local: "Area"},
		VID:     vid,
		Name:    name,
		MTime:   mtime,
	}}
}

type record struct {
	event controller.EventType
	vid   int
	attrs []string
}

type recorder[T model.Object] struct {
	mu      sync.Mutex
	records []record
}

func (r *recorder[T]) callback(event controller.EventType, obj T, data controller.EventData) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, record{event: event, vid: obj.ID(), attrs: data.AttrsChanged})
}

func (r *recorder[T]) handler() controller.Handler[T] {
	return controller.Immediate(r.callback)
}

func (r *recorder[T]) all() []record {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]record(nil), r.records...)
}

func (r *recorder[T]) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = nil
}

func (r *recorder[T]) count(event controller.EventType) int {
	n := 0
	for _, rec := range r.all() {
		if rec.event == event {
			n++
		}
	}
	return n
}

func TestInitializeReconciles(t *testing.T) {
	ctx := context.Background()
	source := mocks.NewMockObjectSource(t)
	source.EXPECT().GetObjects(mock.Anything, []string{"Area"}).
		Return(seq(area(1, "Home", "t1"), area(2, "Kitchen", "t1"), area(3, "Garage", "t1"))).Once()
	source.EXPECT().GetObjects(mock.Anything, []string{"Area"}).
		Return(seq(area(1, "Home", "t1"), area(2, "Cuisine", "t2"), area(4, "Office", "t1"))).Once()

	areas := controller.NewAreas(controller.Deps{Objects: source})
	rec := &recorder[*model.Area]{}
	areas.Subscribe(rec.handler())

	require.NoError(t, areas.Initialize(ctx, false))
	assert.Equal(t, controller.StateInitialized, areas.State())
	assert.Equal(t, 3, rec.count(controller.ObjectAdded))
	kitchen, ok := areas.Get(2)
	require.True(t, ok)

	rec.reset()
	require.NoError(t, areas.Initialize(ctx, false))

	assert.Equal(t, []record{
		{event: controller.ObjectUpdated, vid: 2, attrs: []string{"name"}},
		{event: controller.ObjectAdded, vid: 4},
		{event: controller.ObjectDeleted, vid: 3},
	}, rec.all())
	assert.Equal(t, controller.StateReinitialized, areas.State())
	assert.Equal(t, []int{1, 2, 4}, areas.KnownIDs())

	// The update replaces the cached instance; the one handed out earlier
	// is left as it was.
	got, _ := areas.Get(2)
	assert.NotSame(t, kitchen, got)
	assert.Equal(t, "Kitchen", kitchen.Name)
	assert.Equal(t, "t1", kitchen.MTime)
	assert.Equal(t, "Cuisine", got.Name)
	assert.Equal(t, "t2", got.MTime)
}

func TestInitializeUnchangedEmitsNothing(t *testing.T) {
	ctx := context.Background()
	source := mocks.NewMockObjectSource(t)
	source.EXPECT().GetObjects(mock.Anything, mock.Anything).
		RunAndReturn(func(context.Context, ...string) iter.Seq2[model.Object, error] {
			return seq(area(1, "Home", "t1"), area(2, "Kitchen", "t1"))
		}).Twice()

	areas := controller.NewAreas(controller.Deps{Objects: source})
	require.NoError(t, areas.Initialize(ctx, false))

	rec := &recorder[*model.Area]{}
	areas.Subscribe(rec.handler())
	require.NoError(t, areas.Initialize(ctx, false))

	assert.Empty(t, rec.all())
	assert.Equal(t, 2, areas.Len())
}

func TestInitializeMTimeOnlyEmitsNothing(t *testing.T) {
	ctx := context.Background()
	source := mocks.NewMockObjectSource(t)
	source.EXPECT().GetObjects(mock.Anything, mock.Anything).Return(seq(area(1, "Home", "t1"))).Once()
	source.EXPECT().GetObjects(mock.Anything, mock.Anything).Return(seq(area(1, "Home", "t2"))).Once()

	areas := controller.NewAreas(controller.Deps{Objects: source})
	require.NoError(t, areas.Initialize(ctx, false))

	rec := &recorder[*model.Area]{}
	areas.Subscribe(rec.handler())
	require.NoError(t, areas.Initialize(ctx, false))

	assert.Empty(t, rec.all())
}

func TestInitializeSourceError(t *testing.T) {
	errBoom := errors.New("boom")
	source := mocks.NewMockObjectSource(t)
	source.EXPECT().GetObjects(mock.Anything, mock.Anything).Return(failingSeq(errBoom, area(1, "Home", ""))).Once()

	areas := controller.NewAreas(controller.Deps{Objects: source})
	err := areas.Initialize(context.Background(), false)

	require.ErrorIs(t, err, errBoom)
	assert.False(t, areas.Initialized())
	assert.True(t, areas.Contains(1))
}

func TestInitializeWithoutSource(t *testing.T) {
	areas := controller.NewAreas(controller.Deps{})
	assert.ErrorIs(t, areas.Initialize(context.Background(), false), controller.ErrNoObjectSource)
}

func TestSubscribeFilters(t *testing.T) {
	source := mocks.NewMockObjectSource(t)
	source.EXPECT().GetObjects(mock.Anything, mock.Anything).
		Return(seq(area(1, "Home", ""), area(2, "Kitchen", ""))).Once()

	areas := controller.NewAreas(controller.Deps{Objects: source})
	all := &recorder[*model.Area]{}
	byID := &recorder[*model.Area]{}
	updatesOnly := &recorder[*model.Area]{}
	areas.Subscribe(all.handler())
	areas.Subscribe(byID.handler(), controller.WithIDs(2))
	areas.Subscribe(updatesOnly.handler(), controller.WithEvents(controller.ObjectUpdated))

	require.NoError(t, areas.Initialize(context.Background(), false))

	assert.Len(t, all.all(), 2)
	assert.Equal(t, []record{{event: controller.ObjectAdded, vid: 2}}, byID.all())
	assert.Empty(t, updatesOnly.all())
}

func TestUnsubscribeStopsOnlyThatCallback(t *testing.T) {
	source := mocks.NewMockObjectSource(t)
	source.EXPECT().GetObjects(mock.Anything, mock.Anything).Return(seq(area(1, "Home", ""))).Once()

	areas := controller.NewAreas(controller.Deps{Objects: source})
	kept := &recorder[*model.Area]{}
	dropped := &recorder[*model.Area]{}
	droppedByID := &recorder[*model.Area]{}
	areas.Subscribe(kept.handler())
	unsub := areas.Subscribe(dropped.handler())
	unsubID := areas.Subscribe(droppedByID.handler(), controller.WithIDs(1))

	unsub()
	unsub()
	unsubID()
	require.NoError(t, areas.Initialize(context.Background(), false))

	assert.Len(t, kept.all(), 1)
	assert.Empty(t, dropped.all())
	assert.Empty(t, droppedByID.all())
}

func TestScheduledHandlersRunOnScheduler(t *testing.T) {
	source := mocks.NewMockObjectSource(t)
	source.EXPECT().GetObjects(mock.Anything, mock.Anything).
		Return(seq(area(1, "Home", ""), area(2, "Kitchen", ""))).Once()

	var wg conc.WaitGroup
	areas := controller.NewAreas(controller.Deps{Objects: source, Scheduler: &wg})
	rec := &recorder[*model.Area]{}
	h := controller.Scheduled(rec.callback)
	assert.True(t, h.IsScheduled())
	areas.Subscribe(h)

	require.NoError(t, areas.Initialize(context.Background(), false))
	areas.Wait()

	assert.Equal(t, 2, rec.count(controller.ObjectAdded))
}

func TestUpdateState(t *testing.T) {
	source := mocks.NewMockObjectSource(t)
	source.EXPECT().GetObjects(mock.Anything, mock.Anything).Return(seq(
		&model.RGBLoad{Base: model.Base{XMLName: xml.Name{Local: "Vantage.DGColorLoad"}, VID: 7}, ColorType: "CCT"},
	)).Once()

	loads := controller.NewRGBLoads(controller.Deps{Objects: source})
	require.NoError(t, loads.Initialize(context.Background(), false))
	rec := &recorder[*model.RGBLoad]{}
	loads.Subscribe(rec.handler())

	changed := loads.UpdateState(7, map[string]any{"level": decimal.NewFromInt(40), "color_temp": 2700})
	assert.Equal(t, []string{"color_temp", "level"}, changed)

	t.Run("identical values emit nothing", func(t *testing.T) {
		rec.reset()
		assert.Empty(t, loads.UpdateState(7, map[string]any{"level": decimal.RequireFromString("40.000")}))
		assert.Empty(t, rec.all())
	})

	t.Run("one changed field among several", func(t *testing.T) {
		rec.reset()
		loads.UpdateState(7, map[string]any{"level": decimal.NewFromInt(40), "color_temp": 3000})
		assert.Equal(t, []record{{event: controller.ObjectUpdated, vid: 7, attrs: []string{"color_temp"}}}, rec.all())

		obj, _ := loads.Get(7)
		require.NotNil(t, obj.ColorTemp)
		assert.Equal(t, 3000, *obj.ColorTemp)
	})

	t.Run("unknown fields are skipped", func(t *testing.T) {
		rec.reset()
		assert.Empty(t, loads.UpdateState(7, map[string]any{"brightness": 1, "level": "high"}))
		assert.Empty(t, rec.all())
	})

	t.Run("unknown vid is ignored", func(t *testing.T) {
		rec.reset()
		assert.Nil(t, loads.UpdateState(99, map[string]any{"level": decimal.NewFromInt(1)}))
		assert.Empty(t, rec.all())
	})
}

func TestUpdateStateConcurrentWithQueries(t *testing.T) {
	source := mocks.NewMockObjectSource(t)
	source.EXPECT().GetObjects(mock.Anything, mock.Anything).Return(seq(load(12, "Pendant"))).Once()

	loads := controller.NewLoads(controller.Deps{Objects: source})
	require.NoError(t, loads.Initialize(context.Background(), false))
	held, _ := loads.Get(12)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := range 200 {
			loads.UpdateState(12, map[string]any{"level": decimal.NewFromInt(int64(i % 2 * 100))})
		}
	}()
	go func() {
		defer wg.Done()
		for range 200 {
			loads.On()
			loads.Off()
			if obj, ok := loads.Get(12); ok {
				_ = obj.IsOn()
			}
			_ = held.IsOn()
		}
	}()
	wg.Wait()

	assert.Nil(t, held.Level, "objects already handed out are never written")
	obj, _ := loads.Get(12)
	require.NotNil(t, obj.Level)
	assert.True(t, obj.Level.Equal(decimal.NewFromInt(100)))
}

func TestQueries(t *testing.T) {
	parent := area(1, "Home", "")
	child := area(2, "Kitchen", "")
	child.ParentID = 1
	other := area(3, "Garage", "")
	other.ParentID = 1
	source := mocks.NewMockObjectSource(t)
	source.EXPECT().GetObjects(mock.Anything, mock.Anything).Return(seq(other, parent, child)).Once()

	areas := controller.NewAreas(controller.Deps{Objects: source})
	require.NoError(t, areas.Initialize(context.Background(), false))

	ids := func(objs []*model.Area) []int {
		var out []int
		for _, o := range objs {
			out = append(out, o.ID())
		}
		return out
	}
	assert.Equal(t, []int{1, 2, 3}, ids(areas.All()))
	assert.Equal(t, []int{2, 3}, ids(areas.Children(1)))
	root, ok := areas.Root()
	require.True(t, ok)
	assert.Equal(t, 1, root.ID())
	assert.False(t, areas.Contains(9))
	assert.Equal(t, []string{"Area"}, areas.Types())
}
