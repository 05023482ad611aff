// Package mcp provides clients for the diagram editor tool servers that
// SketchStack drives over the Model Context Protocol.
//
// [Client] owns one server process, started lazily over stdio and
// restarted after a transport failure. Tool calls are bounded by a timeout
// and retried with a constant delay. [DrawIO] and [Excalidraw] wrap the two
// tools the application uses:
//
//	d := mcp.NewDrawIO(mcp.Config{Command: "npx", Args: []string{"@drawio/mcp"}}, nil)
//	defer d.Close()
//	_, err := d.OpenXML(ctx, doc, mcp.OpenOptions{})
//
// Tests pass a [Dialer] backed by an in-process server instead of a
// subprocess.
package mcp
