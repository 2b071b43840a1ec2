// This file is part of Gopher2600.
//
// Gopher2600 is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Gopher2600 is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Gopher2600.  If not, see <https://www.gnu.org/licenses/>.

package main

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jetsetilly/gopher2600netplay/logger"
	"github.com/jetsetilly/gopher2600netplay/modalflag"
	"github.com/jetsetilly/gopher2600netplay/netplay/session"
	"github.com/jetsetilly/gopher2600netplay/netplay/spectator"
	"github.com/jetsetilly/gopher2600netplay/paths"
	"github.com/jetsetilly/gopher2600netplay/version"
)

type stateReq = string

const (
	// main thread should end as soon as possible. takes an optional int
	// argument, indicating the status code.
	reqQuit stateReq = "QUIT"

	// reset interrupt signal handling, used once a sub-mode has installed
	// its own handling (the bubbletea program's own ctrl+c key binding).
	reqNoIntSig stateReq = "NOINTSIG"
)

type stateRequest struct {
	req  stateReq
	args interface{}
}

// mainSync is the same launch()/main() split the gopher2600 binary uses:
// launch() runs as a goroutine and communicates state changes back to
// main() over a channel, so that main() retains control of process exit and
// default ctrl+c handling until a sub-mode takes over.
type mainSync struct {
	state chan stateRequest
}

// #mainthread
func main() {
	sync := &mainSync{state: make(chan stateRequest)}

	exitVal := 0

	intChan := make(chan os.Signal, 1)
	signal.Notify(intChan, os.Interrupt)

	go launch(sync)

	done := false
	for !done {
		select {
		case <-intChan:
			fmt.Print("\r")
			done = true

		case state := <-sync.state:
			switch state.req {
			case reqQuit:
				done = true
				if state.args != nil {
					if v, ok := state.args.(int); ok {
						exitVal = v
					} else {
						panic(fmt.Sprintf("cannot convert %s arguments into int", reqQuit))
					}
				}

			case reqNoIntSig:
				signal.Reset(os.Interrupt)
			}
		}
	}

	os.Exit(exitVal)
}

func launch(sync *mainSync) {
	md := &modalflag.Modes{Output: os.Stdout}
	md.NewArgs(os.Args[1:])
	md.NewMode()
	md.AddSubModes("HOST", "CONNECT", "OBSERVE", "VERSION")

	p, err := md.Parse()
	switch p {
	case modalflag.ParseHelp:
		sync.state <- stateRequest{req: reqQuit}
		return

	case modalflag.ParseError:
		fmt.Printf("* error: %v\n", err)
		sync.state <- stateRequest{req: reqQuit, args: 10}
		return
	}

	switch md.Mode() {
	case "HOST":
		err = host(md, sync)
	case "CONNECT":
		err = connect(md, sync)
	case "OBSERVE":
		err = observe(md, sync)
	case "VERSION":
		err = showVersion(md)
	}

	if err != nil {
		fmt.Printf("* error in %s mode: %s\n", md.String(), err)
		sync.state <- stateRequest{req: reqQuit, args: 20}
		return
	}

	sync.state <- stateRequest{req: reqQuit}
}

func showVersion(md *modalflag.Modes) error {
	md.NewMode()
	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}
	v, rev, _ := version.Version()
	fmt.Printf("%s %s (%s)\n", version.ApplicationName, v, rev)
	return nil
}

func host(md *modalflag.Modes, sync *mainSync) error {
	md.NewMode()

	localPort := md.AddInt("port", 58813, "local UDP port to listen on")
	numPlayers := md.AddInt("players", 2, "number of sides in the session (2-8)")
	username := md.AddString("username", "player", "username announced to peers")
	delay := md.AddInt("delay", 3, "input delay in frames, confirmed once every peer has joined")
	romID := md.AddString("romid", "netplaysession", "sync identifier; every peer must report the same one")
	saveReplay := md.AddBool("replay", false, "save a replay recording of this session")
	spectate := md.AddBool("spectate", false, "serve a read-only websocket spectator feed")
	spectatePort := md.AddInt("spectate-port", 8080, "HTTP port for the spectator feed")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	cfg, err := buildConfig(session.ModeHost, *localPort, "", 0, *numPlayers, *username, *saveReplay)
	if err != nil {
		return err
	}

	sync.state <- stateRequest{req: reqNoIntSig}

	return run(cfg, *romID, *delay, *spectate, *spectatePort)
}

func connect(md *modalflag.Modes, sync *mainSync) error {
	md.NewMode()

	localPort := md.AddInt("port", 0, "local UDP port to bind (0 for an ephemeral port)")
	peerAddress := md.AddString("host", "", "address of the host to connect to")
	peerPort := md.AddInt("hostport", 0, "UDP port of the host to connect to")
	username := md.AddString("username", "player", "username announced to peers")
	romID := md.AddString("romid", "netplaysession", "sync identifier; must match the host's")
	saveReplay := md.AddBool("replay", false, "save a replay recording of this session")
	spectate := md.AddBool("spectate", false, "serve a read-only websocket spectator feed")
	spectatePort := md.AddInt("spectate-port", 8080, "HTTP port for the spectator feed")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	if *peerAddress == "" || *peerPort == 0 {
		return fmt.Errorf("-host and -hostport are required in %s mode", md)
	}

	cfg, err := buildConfig(session.ModeConnect, *localPort, *peerAddress, *peerPort, 0, *username, *saveReplay)
	if err != nil {
		return err
	}

	sync.state <- stateRequest{req: reqNoIntSig}

	return run(cfg, *romID, 0, *spectate, *spectatePort)
}

func observe(md *modalflag.Modes, sync *mainSync) error {
	md.NewMode()

	localPort := md.AddInt("port", 0, "local UDP port to bind (0 for an ephemeral port)")
	peerAddress := md.AddString("host", "", "address of the host to observe")
	peerPort := md.AddInt("hostport", 0, "UDP port of the host to observe")
	username := md.AddString("username", "observer", "username announced to peers")
	romID := md.AddString("romid", "netplaysession", "sync identifier; must match the host's")
	spectate := md.AddBool("spectate", false, "also serve a read-only websocket spectator feed")
	spectatePort := md.AddInt("spectate-port", 8080, "HTTP port for the spectator feed")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	if *peerAddress == "" || *peerPort == 0 {
		return fmt.Errorf("-host and -hostport are required in %s mode", md)
	}

	cfg, err := buildConfig(session.ModeObserve, *localPort, *peerAddress, *peerPort, 0, *username, false)
	if err != nil {
		return err
	}

	sync.state <- stateRequest{req: reqNoIntSig}

	return run(cfg, *romID, 0, *spectate, *spectatePort)
}

// buildConfig assembles a session.Config from already-parsed flag values.
// It is kept free of modalflag so it can be exercised directly by tests;
// peerAddress/peerPort/numPlayers are ignored when meaningless for mode,
// matching Config.Validate's own mode-dependent requirements.
func buildConfig(mode session.Mode, localBindPort int, peerAddress string, peerPort, numPlayers int, username string, saveReplay bool) (*session.Config, error) {
	cfg := session.NewConfig()

	if err := cfg.Set("mode", mode.String()); err != nil {
		return nil, err
	}
	if err := cfg.Set("local_bind_port", localBindPort); err != nil {
		return nil, err
	}
	if mode != session.ModeHost {
		if err := cfg.Set("peer_address", peerAddress); err != nil {
			return nil, err
		}
		if err := cfg.Set("peer_port", peerPort); err != nil {
			return nil, err
		}
	} else if numPlayers > 0 {
		if err := cfg.Set("num_players", numPlayers); err != nil {
			return nil, err
		}
	}
	if err := cfg.Set("username", username); err != nil {
		return nil, err
	}
	if err := cfg.Set("save_replay", saveReplay); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// replayDestination opens (creating the directory tree if necessary) a
// fresh replay file under paths.ResourcePath("replays", ...), named for the
// moment the session was launched.
func replayDestination() (io.WriteCloser, error) {
	name := paths.ResourcePath("replays", fmt.Sprintf("netplay-%d.rep", time.Now().Unix()))
	if err := os.MkdirAll(filepath.Dir(name), 0700); err != nil {
		return nil, err
	}
	return os.Create(name)
}

// run builds the session and its notification plumbing from cfg, opens it,
// and drives a bubbletea console until the user ends the session or a peer
// does. hostDelay is only consulted in Host mode, where it is the starting
// value of the console's delay prompt; the host confirms it explicitly once
// every expected peer has joined.
func run(cfg *session.Config, romID string, hostDelay int, spectate bool, spectatePort int) error {
	vcs := newIdentityVCS(romID)

	var hub *spectator.Hub
	if spectate {
		hub = spectator.NewHub()
	}
	bridge := newNotifyBridge(hub)

	var replayDest io.WriteCloser
	if cfg.SaveReplay.Get().(bool) {
		var err error
		replayDest, err = replayDestination()
		if err != nil {
			return err
		}
	}

	s, err := session.New(cfg, vcs, bridge, replayDest)
	if err != nil {
		if replayDest != nil {
			_ = replayDest.Close()
		}
		return err
	}

	if hub != nil {
		server := &http.Server{Addr: fmt.Sprintf(":%d", spectatePort), Handler: hub}
		go func() {
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Logf(logger.Allow, "netplaysession", "spectator server: %v", err)
			}
		}()
		defer server.Close()
	}

	if err := s.Open(); err != nil {
		_ = s.Close()
		return err
	}

	m := newModel(cfg.ModeValue(), s, bridge.events, hostDelay)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, runErr := p.Run()

	s.Cancel()
	_ = s.Close()

	return runErr
}
