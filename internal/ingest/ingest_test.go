package ingest

import (
	"bufio"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goblimey/go-tools/testsupport"

	"ogntrack/internal/queue"
)

func workingDirectory(t *testing.T) string {
	t.Helper()
	dir, err := testsupport.CreateWorkingDirectory()
	if err != nil {
		t.Fatalf("CreateWorkingDirectory: %v", err)
	}
	t.Cleanup(func() { testsupport.RemoveWorkingDirectory(dir) })
	return dir
}

func TestDialWritesLoginLine(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer ln.Close()

	accepted := make(chan string, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			accepted <- ""
			return
		}
		defer conn.Close()
		line, _ := bufio.NewReader(conn).ReadString('\n')
		accepted <- line
		conn.Write([]byte("some-aprs-line\n"))
	}()

	addr := ln.Addr().(*net.TCPAddr)
	out := queue.New[string]()
	ing, err := Dial("127.0.0.1", addr.Port, LoginInfo{ClientName: "ogntrack", Version: "1.0", Filter: "r/0/0/1"}, out)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer ing.Close()

	select {
	case login := <-accepted:
		want := "user N0CALL pass -1 vers ogntrack 1.0 filter r/0/0/1 \r\n"
		if login != want {
			t.Errorf("login line = %q, want %q", login, want)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for login line")
	}

	if !ing.Step() {
		t.Fatal("Step() = false on first read, want true")
	}

	line, ok := out.Receive()
	if !ok {
		t.Fatal("Receive: queue closed unexpectedly")
	}
	if line != "some-aprs-line\n" {
		t.Errorf("forwarded line = %q", line)
	}
}

func TestReplaySourceStopsAtEOF(t *testing.T) {
	dir := workingDirectory(t)
	path := filepath.Join(dir, "replay.txt")
	if err := os.WriteFile(path, []byte("line-one\nline-two\n"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	out := queue.New[string]()
	src, err := OpenReplay(path, out)
	if err != nil {
		t.Fatalf("OpenReplay: %v", err)
	}
	defer src.Close()

	if !src.Step() {
		t.Fatal("Step() #1 = false, want true")
	}
	if !src.Step() {
		t.Fatal("Step() #2 = false, want true")
	}
	if src.Step() {
		t.Fatal("Step() #3 = true, want false at EOF")
	}

	first, _ := out.Receive()
	second, _ := out.Receive()
	if first != "line-one\n" || second != "line-two\n" {
		t.Errorf("got lines %q, %q", first, second)
	}
}

func TestReplaySourceTeesLines(t *testing.T) {
	dir := workingDirectory(t)
	path := filepath.Join(dir, "replay.txt")
	if err := os.WriteFile(path, []byte("only-line\n"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	teePath := filepath.Join(dir, "tee.txt")
	teeFile, err := os.Create(teePath)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer teeFile.Close()

	out := queue.New[string]()
	src, err := OpenReplay(path, out, WithTee(teeFile))
	if err != nil {
		t.Fatalf("OpenReplay: %v", err)
	}
	defer src.Close()

	src.Step()

	teed, err := os.ReadFile(teePath)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(teed) != "only-line\n" {
		t.Errorf("tee contents = %q", teed)
	}
}
