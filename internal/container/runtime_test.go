// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package container

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
)

// mockExecutor records calls and returns configured responses.
type mockExecutor struct {
	availableBins map[string]bool // binary -> whether LookPath succeeds
	runnableCmds  map[string]bool // "bin arg1 arg2" -> whether RunSilent succeeds
	runOutputFunc func(name string, args []string, stdout io.Writer) error
}

func (m *mockExecutor) LookPath(file string) (string, error) {
	if m.availableBins[file] {
		return "/usr/bin/" + file, nil
	}
	return "", errors.New("not found: " + file)
}

func (m *mockExecutor) RunSilent(name string, args ...string) error {
	key := name + " " + strings.Join(args, " ")
	if m.runnableCmds[key] {
		return nil
	}
	return errors.New("command failed: " + key)
}

func (m *mockExecutor) RunOutput(name string, args []string, stdout io.Writer) error {
	if m.runOutputFunc != nil {
		return m.runOutputFunc(name, args, stdout)
	}
	return nil
}

func TestDetectRuntime(t *testing.T) {
	tests := []struct {
		name     string
		exec     *mockExecutor
		wantName string
		wantErr  bool
	}{
		{
			name: "docker available",
			exec: &mockExecutor{
				availableBins: map[string]bool{"docker": true},
				runnableCmds:  map[string]bool{"docker info": true},
			},
			wantName: "docker",
		},
		{
			name: "podman fallback when docker missing",
			exec: &mockExecutor{
				availableBins: map[string]bool{"podman": true},
				runnableCmds:  map[string]bool{"podman info": true},
			},
			wantName: "podman",
		},
		{
			name: "neither available",
			exec: &mockExecutor{
				availableBins: map[string]bool{},
				runnableCmds:  map[string]bool{},
			},
			wantErr: true,
		},
		{
			name: "docker on PATH but info fails, podman works",
			exec: &mockExecutor{
				availableBins: map[string]bool{"docker": true, "podman": true},
				runnableCmds:  map[string]bool{"podman info": true},
			},
			wantName: "podman",
		},
		{
			name: "both available, docker preferred",
			exec: &mockExecutor{
				availableBins: map[string]bool{"docker": true, "podman": true},
				runnableCmds:  map[string]bool{"docker info": true, "podman info": true},
			},
			wantName: "docker",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt, err := detectRuntime(tt.exec)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !strings.Contains(err.Error(), "no container runtime available") {
					t.Errorf("error should mention no runtime available, got: %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if rt.Name() != tt.wantName {
				t.Errorf("got runtime %q, want %q", rt.Name(), tt.wantName)
			}
		})
	}
}

func TestImageExists(t *testing.T) {
	tests := []struct {
		name    string
		mkRT    func(*mockExecutor) Runtime
		image   string
		cmds    map[string]bool
		wantErr bool
	}{
		{
			name:  "docker image exists",
			mkRT:  func(e *mockExecutor) Runtime { return newDockerRuntime(e) },
			image: "verapdf/cli:latest",
			cmds:  map[string]bool{"docker image inspect verapdf/cli:latest": true},
		},
		{
			name:    "docker image not found",
			mkRT:    func(e *mockExecutor) Runtime { return newDockerRuntime(e) },
			image:   "verapdf/cli:latest",
			cmds:    map[string]bool{},
			wantErr: true,
		},
		{
			name:  "podman image exists",
			mkRT:  func(e *mockExecutor) Runtime { return newPodmanRuntime(e) },
			image: "verapdf/cli:latest",
			cmds:  map[string]bool{"podman image exists verapdf/cli:latest": true},
		},
		{
			name:    "podman image not found",
			mkRT:    func(e *mockExecutor) Runtime { return newPodmanRuntime(e) },
			image:   "verapdf/cli:latest",
			cmds:    map[string]bool{},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec := &mockExecutor{runnableCmds: tt.cmds}
			rt := tt.mkRT(exec)
			err := rt.ImageExists(tt.image)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !strings.Contains(err.Error(), tt.image) {
					t.Errorf("error should mention image name, got: %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestRun(t *testing.T) {
	mounts := []Mount{{Source: "/home/u/docs", Target: "/data", ReadOnly: true}}
	args := []string{"--flavour", "1b", "/data/report.pdf"}

	tests := []struct {
		name     string
		mkRT     func(*mockExecutor) Runtime
		mounts   []Mount
		runFunc  func(string, []string, io.Writer) error
		wantBin  string
		wantArgs []string
		wantOut  string
		wantErr  bool
	}{
		{
			name:     "docker run mounts and passes arguments",
			mkRT:     func(e *mockExecutor) Runtime { return newDockerRuntime(e) },
			mounts:   mounts,
			wantBin:  "docker",
			wantArgs: []string{"run", "--rm", "-v", "/home/u/docs:/data:ro", "verapdf/cli:latest", "--flavour", "1b", "/data/report.pdf"},
			wantOut:  "PASS /data/report.pdf",
		},
		{
			name:     "podman run with writable mount",
			mkRT:     func(e *mockExecutor) Runtime { return newPodmanRuntime(e) },
			mounts:   []Mount{{Source: "/tmp/x", Target: "/out"}},
			wantBin:  "podman",
			wantArgs: []string{"run", "--rm", "-v", "/tmp/x:/out", "verapdf/cli:latest", "--flavour", "1b", "/data/report.pdf"},
			wantOut:  "PASS /data/report.pdf",
		},
		{
			name:   "run failure returns wrapped error",
			mkRT:   func(e *mockExecutor) Runtime { return newDockerRuntime(e) },
			mounts: mounts,
			runFunc: func(string, []string, io.Writer) error {
				return errors.New("container exited with code 1")
			},
			wantErr: true,
		},
		{
			name:    "mount source with colon rejected",
			mkRT:    func(e *mockExecutor) Runtime { return newDockerRuntime(e) },
			mounts:  []Mount{{Source: "C:/docs", Target: "/data"}},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotBin string
			var gotArgs []string
			runFunc := tt.runFunc
			if runFunc == nil {
				runFunc = func(name string, args []string, stdout io.Writer) error {
					gotBin, gotArgs = name, args
					_, _ = stdout.Write([]byte("PASS /data/report.pdf"))
					return nil
				}
			}
			exec := &mockExecutor{runOutputFunc: runFunc}
			rt := tt.mkRT(exec)
			var out bytes.Buffer
			err := rt.Run("verapdf/cli:latest", tt.mounts, args, &out)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if gotBin != tt.wantBin {
				t.Errorf("binary = %q, want %q", gotBin, tt.wantBin)
			}
			if strings.Join(gotArgs, " ") != strings.Join(tt.wantArgs, " ") {
				t.Errorf("args = %q, want %q", gotArgs, tt.wantArgs)
			}
			if got := out.String(); got != tt.wantOut {
				t.Errorf("got output %q, want %q", got, tt.wantOut)
			}
		})
	}
}

func TestRuntimeName(t *testing.T) {
	exec := &mockExecutor{}
	docker := newDockerRuntime(exec)
	if docker.Name() != "docker" {
		t.Errorf("docker runtime name = %q, want %q", docker.Name(), "docker")
	}
	podman := newPodmanRuntime(exec)
	if podman.Name() != "podman" {
		t.Errorf("podman runtime name = %q, want %q", podman.Name(), "podman")
	}
}
