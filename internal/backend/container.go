// SPDX-License-Identifier: MPL-2.0

package backend

import (
	"bytes"
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"conformat/internal/container"
	"conformat/internal/issue"
	"conformat/internal/matrix"
)

// sweepTimeout bounds the force-removal of a container that outlived its
// run's deadline.
const sweepTimeout = 10 * time.Second

// ContainerBackend runs implementation images through a container engine.
// Each run gets a generated container name so a child that survives context
// cancellation can still be force-removed.
type ContainerBackend struct {
	engine container.Engine
}

// NewContainerBackend creates a container backend over engine.
func NewContainerBackend(engine container.Engine) *ContainerBackend {
	return &ContainerBackend{engine: engine}
}

// Name returns the backend name, qualified by the engine in use.
func (b *ContainerBackend) Name() string {
	return "container/" + b.engine.Name()
}

// Available reports whether the underlying engine is usable.
func (b *ContainerBackend) Available() bool {
	return b.engine.Available()
}

// Validate checks that the descriptor's image is present locally.
func (b *ContainerBackend) Validate(desc matrix.Descriptor) error {
	exists, err := b.engine.ImageExists(context.Background(), desc.Implementation.Image)
	if err != nil {
		return err
	}
	if !exists {
		return imageNotFound(desc.Implementation.Image)
	}
	return nil
}

// Run executes the descriptor's fixture inside the implementation's image.
// The ctx deadline bounds the run; on expiry the named container is swept
// with a force-remove so nothing keeps running behind the harness's back.
func (b *ContainerBackend) Run(ctx context.Context, desc matrix.Descriptor) Outcome {
	start := time.Now()

	args, err := BuildArgs(desc.Fixture, desc.Environment)
	if err != nil {
		return Outcome{StartErr: err, Duration: time.Since(start)}
	}

	var env map[string]string
	if desc.Environment != "" {
		env = map[string]string{EnvironmentVar: desc.Environment}
	}

	name := "conformat-" + uuid.NewString()[:8]

	var stdout, stderr bytes.Buffer
	result, err := b.engine.Run(ctx, container.RunOptions{
		Image:   desc.Implementation.Image,
		Command: args,
		Env:     env,
		Name:    name,
		Remove:  true,
		Stdout:  &stdout,
		Stderr:  &stderr,
	})

	out := Outcome{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		out.TimedOut = true
		b.sweep(name)
		return out
	}

	switch {
	case err != nil:
		out.StartErr = err
		out.ExitCode = 1
	case result.Error != nil:
		out.StartErr = result.Error
		out.ExitCode = 1
	default:
		out.ExitCode = result.ExitCode
	}

	return out
}

// sweep force-removes a container left behind by a timed-out run. Removal is
// best effort; the run is already classified.
func (b *ContainerBackend) sweep(name string) {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()
	_ = b.engine.Remove(ctx, name, true)
}

func imageNotFound(image string) error {
	return issue.NewErrorContext().
		WithOperation("resolve container image").
		WithResource(image).
		WithSuggestion("Pull or build the implementation images referenced by the catalog").
		Wrap(errors.New("image not present locally")).
		Build()
}
