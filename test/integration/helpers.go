// Package integration drives the branchtabs daemon against real git
// repositories and a scripted editor.
package integration

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/danieljhkim/branchtabs/internal/engine"
	"github.com/danieljhkim/branchtabs/internal/host"
)

const waitTimeout = 5 * time.Second

// gitRepo is a throwaway repository with one commit on master.
type gitRepo struct {
	Dir string
	wt  *git.Worktree
}

func newGitRepo(t *testing.T) *gitRepo {
	t.Helper()

	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("PlainInit() error = %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte("hi\n"), 0644); err != nil {
		t.Fatal(err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := wt.Add("README.md"); err != nil {
		t.Fatal(err)
	}
	_, err = wt.Commit("initial", &git.CommitOptions{
		Author: &object.Signature{Name: "Test User", Email: "test@example.com", When: time.Now()},
	})
	if err != nil {
		t.Fatalf("Commit() error = %v", err)
	}
	return &gitRepo{Dir: dir, wt: wt}
}

// checkout switches to branch, creating it from HEAD when create is set.
func (r *gitRepo) checkout(t *testing.T, branch string, create bool) {
	t.Helper()
	err := r.wt.Checkout(&git.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName(branch),
		Create: create,
	})
	if err != nil {
		t.Fatalf("Checkout(%s) error = %v", branch, err)
	}
}

// touch creates empty files under a temp dir and returns their paths.
func touch(t *testing.T, names ...string) []string {
	t.Helper()
	dir := t.TempDir()
	paths := make([]string, 0, len(names))
	for _, name := range names {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, nil, 0644); err != nil {
			t.Fatal(err)
		}
		paths = append(paths, p)
	}
	return paths
}

// editor is the plugin side of a running daemon.
type editor struct {
	t    *testing.T
	in   *io.PipeWriter
	msgs chan host.Message
	done chan error
}

// startDaemon runs eng.Watch for dir and waits for the startup sweep.
func startDaemon(t *testing.T, eng *engine.Engine, dir string) *editor {
	t.Helper()

	inR, inW := io.Pipe()
	outR, outW := io.Pipe()
	ed := &editor{
		t:    t,
		in:   inW,
		msgs: make(chan host.Message, 64),
		done: make(chan error, 1),
	}

	go func() {
		defer close(ed.msgs)
		scanner := bufio.NewScanner(outR)
		for scanner.Scan() {
			var msg host.Message
			if json.Unmarshal(scanner.Bytes(), &msg) == nil {
				ed.msgs <- msg
			}
		}
	}()

	go func() {
		ed.done <- eng.Watch(context.Background(), &engine.WatchRequest{
			CWD:      dir,
			In:       inR,
			Out:      outW,
			Debounce: 20 * time.Millisecond,
		})
		_ = outW.Close()
	}()

	ed.expect(host.MsgRefresh)
	return ed
}

func (e *editor) send(msg host.Message) {
	e.t.Helper()
	data, err := json.Marshal(msg)
	if err != nil {
		e.t.Fatal(err)
	}
	if _, err := e.in.Write(append(data, '\n')); err != nil {
		e.t.Fatalf("write to daemon: %v", err)
	}
}

func (e *editor) opened(path string) {
	e.t.Helper()
	e.send(host.Message{Type: host.MsgOpened, Scheme: host.SchemeFile, Path: path})
	e.expect(host.MsgRefresh)
}

// expect returns the next message of type typ. Refreshes are skipped unless
// typ is itself a refresh.
func (e *editor) expect(typ string) host.Message {
	e.t.Helper()
	deadline := time.After(waitTimeout)
	for {
		select {
		case msg, ok := <-e.msgs:
			if !ok {
				e.t.Fatalf("daemon output closed while waiting for %s", typ)
			}
			if msg.Type == host.MsgRefresh && typ != host.MsgRefresh {
				continue
			}
			if msg.Type != typ {
				e.t.Fatalf("got %s message %+v, want %s", msg.Type, msg, typ)
			}
			return msg
		case <-deadline:
			e.t.Fatalf("timed out waiting for %s", typ)
		}
	}
}

func (e *editor) reply(req host.Message, answer string) {
	e.t.Helper()
	e.send(host.Message{Type: host.MsgReply, ID: req.ID, Answer: answer})
}

// stop disconnects the editor and waits for the daemon to exit.
func (e *editor) stop() {
	e.t.Helper()
	_ = e.in.Close()
	select {
	case err := <-e.done:
		if err != nil {
			e.t.Fatalf("Watch() error = %v", err)
		}
	case <-time.After(waitTimeout):
		e.t.Fatal("daemon did not exit after the editor disconnected")
	}
}
