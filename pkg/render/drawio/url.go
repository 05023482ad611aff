package drawio

import (
	"bytes"
	"compress/flate"
	"encoding/base64"
	"net/url"
	"strings"
)

const (
	editorBase = "https://app.diagrams.net/"
	viewerBase = "https://viewer.diagrams.net/?highlight=0000ff&edit=_blank&layers=1&nav=1"
)

// LinkOptions controls how the editor opens a shared document.
type LinkOptions struct {
	// Lightbox opens the document read-only, without editor chrome.
	Lightbox bool
	// Dark is "true", "false" or "auto". Empty and "auto" leave the
	// choice to the editor.
	Dark string
}

// EditorURL returns a draw.io editor link that embeds doc in its fragment.
func EditorURL(doc string, opts LinkOptions) string {
	var params []string
	if opts.Lightbox {
		params = append(params, "lightbox=1")
	}
	if opts.Dark != "" && opts.Dark != "auto" {
		params = append(params, "dark="+url.QueryEscape(opts.Dark))
	}
	query := ""
	if len(params) > 0 {
		query = "?" + strings.Join(params, "&")
	}
	return editorBase + query + "#R" + Encode(doc)
}

// ViewerURL returns a read-only draw.io viewer link for doc.
func ViewerURL(doc string) string {
	return viewerBase + "#R" + Encode(doc)
}

// Encode compresses doc with raw DEFLATE, base64-encodes the result and
// percent-encodes it for use in a URL fragment. This is the encoding the
// draw.io "#R" fragment expects.
func Encode(doc string) string {
	var buf bytes.Buffer
	// only an invalid level makes NewWriter fail
	w, _ := flate.NewWriter(&buf, flate.DefaultCompression)
	_, _ = w.Write([]byte(doc))
	_ = w.Close()
	return url.QueryEscape(base64.StdEncoding.EncodeToString(buf.Bytes()))
}
