package aci

import (
	"context"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"github.com/vantage-controls/vantage-go/pkg/clienterr"
)

// Method names.
const (
	MethodLogin            = "ILogin.Login"
	MethodOpenFilter       = "IConfiguration.OpenFilter"
	MethodGetFilterResults = "IConfiguration.GetFilterResults"
	MethodCloseFilter      = "IConfiguration.CloseFilter"
	MethodGetFile          = "IBackup.GetFile"
	MethodGetVersion       = "IIntrospection.GetVersion"
)

// BackupPath is the controller path of the Design Center project backup.
const BackupPath = `Backup\Project.dc`

func loginCall(user, password string) string {
	return "<User>" + escape(user) + "</User><Password>" + escape(password) + "</Password>"
}

// Login checks credentials on the current connection. It reports false,
// without error, when the controller rejects them.
func (c *Client) Login(ctx context.Context, user, password string) (bool, error) {
	ret, err := c.Request(ctx, MethodLogin, loginCall(user, password))
	if err != nil {
		return false, err
	}
	return parseBool(MethodLogin, ret)
}

// OpenFilter opens a server-side object filter over the given element
// names (all objects when none are given) and returns its handle.
func (c *Client) OpenFilter(ctx context.Context, types ...string) (int, error) {
	var call strings.Builder
	if len(types) > 0 {
		call.WriteString("<Objects>")
		for _, t := range types {
			call.WriteString("<ObjectType>" + escape(t) + "</ObjectType>")
		}
		call.WriteString("</Objects>")
	}

	ret, err := c.Request(ctx, MethodOpenFilter, call.String())
	if err != nil {
		return 0, err
	}
	h, err := strconv.Atoi(strings.TrimSpace(ret))
	if err != nil {
		return 0, &clienterr.ProtocolError{Op: MethodOpenFilter, Message: fmt.Sprintf("invalid filter handle %q", ret)}
	}
	return h, nil
}

// GetFilterResults returns the inner XML of up to count results of an open
// filter. An empty result means the filter is exhausted.
func (c *Client) GetFilterResults(ctx context.Context, handle, count int) (string, error) {
	call := fmt.Sprintf("<Count>%d</Count><WholeObject>true</WholeObject><hFilter>%d</hFilter>", count, handle)
	return c.Request(ctx, MethodGetFilterResults, call)
}

// CloseFilter releases an open filter.
func (c *Client) CloseFilter(ctx context.Context, handle int) (bool, error) {
	ret, err := c.Request(ctx, MethodCloseFilter, strconv.Itoa(handle))
	if err != nil {
		return false, err
	}
	return parseBool(MethodCloseFilter, ret)
}

type fileReturn struct {
	Signature string `xml:"Signature"`
	File      string `xml:"File"`
}

// GetBackup fetches the Design Center project file and returns it decoded.
func (c *Client) GetBackup(ctx context.Context) ([]byte, error) {
	return c.GetFile(ctx, BackupPath)
}

// GetFile fetches a file from the controller. The return value is either
// the base64 content itself or a <File> element holding it.
func (c *Client) GetFile(ctx context.Context, path string) ([]byte, error) {
	ret, err := c.Request(ctx, MethodGetFile, escape(path))
	if err != nil {
		return nil, err
	}

	content := strings.TrimSpace(ret)
	if strings.HasPrefix(content, "<") {
		var fr fileReturn
		if err := xml.Unmarshal([]byte("<r>"+content+"</r>"), &fr); err != nil {
			return nil, &clienterr.ProtocolError{Op: MethodGetFile, Message: "malformed file: " + err.Error()}
		}
		content = strings.TrimSpace(fr.File)
	}

	data, err := base64.StdEncoding.DecodeString(strings.Join(strings.Fields(content), ""))
	if err != nil {
		return nil, &clienterr.ProtocolError{Op: MethodGetFile, Message: "invalid base64 content: " + err.Error()}
	}
	return data, nil
}

// Version holds the controller's software versions.
type Version struct {
	Kernel string `xml:"kernel"`
	RootFS string `xml:"rootfs"`
	App    string `xml:"app"`
}

// GetVersion returns the controller's software versions.
func (c *Client) GetVersion(ctx context.Context) (Version, error) {
	ret, err := c.Request(ctx, MethodGetVersion, "")
	if err != nil {
		return Version{}, err
	}

	var v Version
	if err := xml.Unmarshal([]byte("<r>"+ret+"</r>"), &v); err != nil {
		return Version{}, &clienterr.ProtocolError{Op: MethodGetVersion, Message: "malformed version: " + err.Error()}
	}
	return v, nil
}
