// Command client is a headless participant: it joins a room, draws a
// short demo sequence, mirrors whatever the room broadcasts, and exports
// the resulting canvas as a PNG.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"collabcanvas/applier"
	"collabcanvas/canvas"
	"collabcanvas/engine"
	"collabcanvas/prefs"
	"collabcanvas/protocol"
	ws "collabcanvas/websocket"
)

func main() {
	var (
		serverURL = flag.String("server", "ws://localhost:8080/ws", "relay websocket URL")
		room      = flag.String("room", "", "room to join (default from preferences)")
		out       = flag.String("out", "canvas.png", "PNG output path")
		listen    = flag.Duration("listen", 10*time.Second, "how long to mirror the room before exporting")
		prefsPath = flag.String("prefs", defaultPrefsPath(), "preferences file")
		demo      = flag.Bool("demo", true, "draw the demo sequence after joining")
	)
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	p, err := prefs.Load(*prefsPath)
	if err != nil {
		slog.Warn("preferences unavailable, using defaults", "error", err)
	}
	roomID := *room
	if roomID == "" {
		roomID = p.DefaultRoom
	}

	client := ws.NewClient(ws.ClientConfig{URL: *serverURL})
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	err = client.Connect(ctx)
	cancel()
	if err != nil {
		slog.Error("connect failed", "error", err)
		os.Exit(1)
	}
	defer client.Close()

	if err := client.Join(roomID); err != nil {
		slog.Error("join failed", "error", err)
		os.Exit(1)
	}
	slog.Info("joined room", "room", roomID)

	surface := canvas.New(800, 600)
	eng := engine.New(surface, client, roomID)
	eng.SetColor(p.Color)
	eng.SetSize(p.Size)

	app := applier.New(surface, roomID)
	app.OnJoin = func(n protocol.UserJoined) { slog.Info("peer joined", "clientId", n.ClientID) }
	app.OnLeave = func(n protocol.UserLeft) { slog.Info("peer left", "clientId", n.ClientID) }

	if *demo {
		drawDemo(eng)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	deadline := time.After(*listen)

loop:
	for {
		select {
		case op, ok := <-client.Events():
			if !ok {
				break loop
			}
			app.Apply(op)
		case <-deadline:
			break loop
		case <-quit:
			break loop
		}
	}

	f, err := os.Create(*out)
	if err != nil {
		slog.Error("create output", "error", err)
		os.Exit(1)
	}
	defer f.Close()
	if err := eng.ExportPNG(f); err != nil {
		slog.Error("export failed", "error", err)
		os.Exit(1)
	}
	slog.Info("canvas exported", "path", *out)

	p.DefaultRoom = roomID
	if err := prefs.Save(*prefsPath, p); err != nil {
		slog.Warn("saving preferences failed", "error", err)
	}
}

func defaultPrefsPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "prefs.yaml"
	}
	return filepath.Join(dir, "collabcanvas", "prefs.yaml")
}

func drawDemo(eng *engine.Engine) {
	eng.SetTool(engine.ToolBrush)
	eng.PointerDown(10, 10)
	eng.PointerMove(30, 30)
	eng.PointerMove(50, 50)
	eng.PointerUp(50, 50)

	eng.SetTool(engine.ToolRectangle)
	eng.PointerDown(100, 100)
	eng.PointerMove(200, 150)
	eng.PointerUp(240, 180)

	eng.SetTool(engine.ToolText)
	eng.PointerDown(120, 250)
	eng.CommitText("hello from collabcanvas")
}
