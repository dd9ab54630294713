package model

import (
	"encoding/xml"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

const loadXML = `<Load VID="118" Master="1" MTime="2023-06-01T10:00:00">
	<Name>Kitchen</Name>
	<DName>Kitchen Pendants</DName>
	<Model>Dimmer</Model>
	<Note></Note>
	<Area>12</Area>
	<LoadType>Incandescent</LoadType>
	<PowerProfile>4</PowerProfile>
	<Unknown>ignored</Unknown>
</Load>`

func decodeOne(t *testing.T, doc string) Object {
	t.Helper()
	d := xml.NewDecoder(strings.NewReader(doc))
	for {
		tok, err := d.Token()
		if err != nil {
			t.Fatalf("no element in %q: %v", doc, err)
		}
		if start, ok := tok.(xml.StartElement); ok {
			obj, err := Decode(d, start)
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			return obj
		}
	}
}

func TestDecodeLoad(t *testing.T) {
	obj := decodeOne(t, loadXML)

	load, ok := obj.(*Load)
	if !ok {
		t.Fatalf("expected *Load, got %T", obj)
	}
	if load.ID() != 118 {
		t.Errorf("expected vid 118, got %d", load.ID())
	}
	if load.ObjectType() != "Load" {
		t.Errorf("expected type Load, got %q", load.ObjectType())
	}
	if load.Name != "Kitchen" || load.DisplayNameOrName() != "Kitchen Pendants" {
		t.Errorf("unexpected names %q / %q", load.Name, load.DisplayNameOrName())
	}
	if load.AreaID != 12 || load.MasterID != 1 || load.PowerProfile != 4 {
		t.Errorf("unexpected ids: area=%d master=%d profile=%d", load.AreaID, load.MasterID, load.PowerProfile)
	}
	if load.MTime != "2023-06-01T10:00:00" {
		t.Errorf("unexpected mtime %q", load.MTime)
	}
	if load.Level != nil {
		t.Error("state must not be decoded from configuration")
	}
}

func TestDecodeSharedType(t *testing.T) {
	obj := decodeOne(t, `<Keypad VID="20"><Name>Entry</Name><Area>3</Area><Bus>2</Bus></Keypad>`)

	st, ok := obj.(*Station)
	if !ok {
		t.Fatalf("expected *Station, got %T", obj)
	}
	if st.ObjectType() != "Keypad" || st.AreaID != 3 || st.BusID != 2 {
		t.Errorf("unexpected station %+v", st)
	}

	obj = decodeOne(t, `<Vantage.DDGColorLoad VID="30"><ColorType>CCT</ColorType><MinTemp>2700</MinTemp></Vantage.DDGColorLoad>`)
	rgb, ok := obj.(*RGBLoad)
	if !ok {
		t.Fatalf("expected *RGBLoad, got %T", obj)
	}
	if !rgb.IsCCT() || rgb.IsRGB() || rgb.MinTemp != 2700 {
		t.Errorf("unexpected color load %+v", rgb)
	}
}

func TestDecodeUnknownType(t *testing.T) {
	d := xml.NewDecoder(strings.NewReader(`<Objects><Thermostat VID="9"><Name>x</Name></Thermostat><Area VID="2"/></Objects>`))
	var got []Object
	var unknown int
	for {
		tok, err := d.Token()
		if err != nil {
			break
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local == "Objects" {
			continue
		}
		obj, err := Decode(d, start)
		if errors.Is(err, ErrUnknownType) {
			unknown++
			continue
		}
		if err != nil {
			t.Fatalf("Decode failed: %v", err)
		}
		got = append(got, obj)
	}

	if unknown != 1 {
		t.Errorf("expected 1 unknown element, got %d", unknown)
	}
	if len(got) != 1 || got[0].ID() != 2 {
		t.Errorf("expected only the area to decode, got %v", got)
	}
}

func TestRegistry(t *testing.T) {
	for _, name := range []string{"Master", "Area", "Load", "Keypad", "Vantage.DGColorLoad"} {
		if !Registered(name) {
			t.Errorf("expected %s to be registered", name)
		}
	}
	if Registered("Thermostat") {
		t.Error("Thermostat should not be registered")
	}
	if !slices.IsSorted(ElementNames()) {
		t.Error("ElementNames should be sorted")
	}
}

func TestFieldsOf(t *testing.T) {
	f := FieldsOf(&RGBLoad{})

	want := []string{"id", "master_id", "mtime", "name", "display_name", "model", "note",
		"area_id", "color_type", "min_temp", "max_temp", "level", "hsl", "rgb", "rgbw", "color_temp"}
	if !slices.Equal(f.Names(), want) {
		t.Errorf("unexpected field names %v", f.Names())
	}

	level, ok := f.Lookup("level")
	if !ok || !level.State {
		t.Errorf("level should be a state field: %+v", level)
	}
	name, _ := f.Lookup("name")
	if name.State {
		t.Error("name should not be a state field")
	}

	if FieldsOf(&RGBLoad{}) != f {
		t.Error("field table should be cached per type")
	}
}

func TestFieldsSetGet(t *testing.T) {
	load := &Load{}
	f := FieldsOf(load)

	if err := f.Set(load, "level", decimal.NewFromInt(50)); err != nil {
		t.Fatalf("Set element value: %v", err)
	}
	if load.Level == nil || !load.Level.Equal(decimal.NewFromInt(50)) {
		t.Errorf("unexpected level %v", load.Level)
	}

	d := decimal.NewFromInt(75)
	if err := f.Set(load, "level", &d); err != nil {
		t.Fatalf("Set pointer value: %v", err)
	}

	eq, err := f.Equal(load, "level", decimal.RequireFromString("75.000"))
	if err != nil || !eq {
		t.Errorf("expected level to equal 75.000 (err=%v)", err)
	}

	if err := f.Set(load, "level", "loud"); !errors.Is(err, ErrFieldValue) {
		t.Errorf("expected ErrFieldValue, got %v", err)
	}
	if err := f.Set(load, "volume", 3); !errors.Is(err, ErrNoField) {
		t.Errorf("expected ErrNoField, got %v", err)
	}
	if _, err := f.Get(load, "volume"); !errors.Is(err, ErrNoField) {
		t.Errorf("expected ErrNoField, got %v", err)
	}

	if err := f.Set(load, "level", nil); err != nil || load.Level != nil {
		t.Errorf("nil should reset the field: %v %v", err, load.Level)
	}
}

func TestEqual(t *testing.T) {
	five := 5
	tests := []struct {
		a, b any
		want bool
	}{
		{decimal.RequireFromString("1.0"), decimal.NewFromInt(1), true},
		{&five, 5, true},
		{(*int)(nil), 5, false},
		{(*int)(nil), nil, true},
		{[]int{1, 2, 3}, []int{1, 2, 3}, true},
		{[]int{1, 2, 3}, []int{1, 2, 4}, false},
		{[]int(nil), []int{0, 0, 0}, false},
		{"a", "a", true},
	}
	for _, tt := range tests {
		if got := Equal(tt.a, tt.b); got != tt.want {
			t.Errorf("Equal(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestDiff(t *testing.T) {
	old := decodeOne(t, loadXML).(*Load)
	cur := decodeOne(t, loadXML).(*Load)

	if changed := Diff(old, cur); len(changed) != 0 {
		t.Errorf("identical objects should not differ: %v", changed)
	}

	cur.MTime = "2024-01-01T00:00:00"
	cur.Name = "Kitchen Island"
	level := decimal.NewFromInt(10)
	old.Level = &level

	changed := Diff(old, cur)
	if !slices.Equal(changed, []string{"name"}) {
		t.Errorf("expected only name to differ, got %v", changed)
	}
}

func TestCopy(t *testing.T) {
	src := &Station{AreaID: 4}
	dst := &Station{}
	if err := Copy(dst, src, "area_id"); err != nil {
		t.Fatalf("Copy failed: %v", err)
	}
	if dst.AreaID != 4 {
		t.Errorf("expected area 4, got %d", dst.AreaID)
	}

	if err := Copy(&Area{}, src, "bus_id"); !errors.Is(err, ErrNoField) {
		t.Errorf("expected ErrNoField for a field the target lacks, got %v", err)
	}
}

func TestClone(t *testing.T) {
	level := decimal.NewFromInt(40)
	orig := &RGBLoad{Base: Base{VID: 7, Name: "Strip"}, Level: &level, RGB: []int{1, 2, 3}}

	c := Clone(orig)
	if c == orig {
		t.Fatal("Clone returned the same pointer")
	}
	if c.VID != 7 || c.Name != "Strip" || !c.Level.Equal(level) {
		t.Errorf("clone lost fields: %+v", c)
	}

	f := FieldsOf(c)
	if err := f.Set(c, "rgb", []int{9, 9, 9}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := f.Set(c, "level", decimal.NewFromInt(80)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if !slices.Equal(orig.RGB, []int{1, 2, 3}) {
		t.Errorf("original rgb changed: %v", orig.RGB)
	}
	if !orig.Level.Equal(level) {
		t.Errorf("original level changed: %s", orig.Level)
	}
}

func TestLoadPredicates(t *testing.T) {
	l := &Load{LoadType: "High Voltage Relay"}
	if l.IsOn() {
		t.Error("unknown level should not be on")
	}
	lvl := decimal.NewFromInt(1)
	l.Level = &lvl
	if !l.IsOn() || !l.IsRelay() {
		t.Error("expected an on relay")
	}

	rgb := &RGBLoad{ColorType: "rgbw"}
	if !rgb.IsRGB() || rgb.IsCCT() {
		t.Error("rgbw should be an RGB load")
	}
}
