package terminal

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Docker runs commands inside a Docker container through the docker CLI.
// The container may be supplied ready made by name, or created with Start
// and removed with Stop.
type Docker struct {
	container string
	opts      options
}

// NewDocker builds a terminal bound to the named container.
func NewDocker(container string, opts ...Option) *Docker {
	return &Docker{container: container, opts: newOptions(opts)}
}

// Start creates and starts the container from image, mounting the working
// directory at the same path inside the container. The container idles
// until Stop removes it.
func (d *Docker) Start(ctx context.Context, image string) error {
	args := []string{"run", "--rm", "-d", "--name", d.container}
	if d.opts.dir != "" {
		args = append(args, "-v", d.opts.dir+":"+d.opts.dir, "-w", d.opts.dir)
	}
	args = append(args, image, "sleep", "infinity")

	out, err := exec.CommandContext(ctx, "docker", args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("start container %s: %w: %s", d.container, err, strings.TrimSpace(string(out)))
	}
	d.opts.logger.Debug().Str("container", d.container).Str("image", image).Msg("container started")
	return nil
}

// Stop removes the container and anything running in it.
func (d *Docker) Stop(ctx context.Context) error {
	out, err := exec.CommandContext(ctx, "docker", "rm", "-f", d.container).CombinedOutput()
	if err != nil {
		return fmt.Errorf("stop container %s: %w: %s", d.container, err, strings.TrimSpace(string(out)))
	}
	return nil
}

// WorkingDir reports the directory commands run in.
func (d *Docker) WorkingDir() string { return d.opts.dir }

// SetWorkingDir points the terminal at a new working directory. It affects
// exec calls only; the volume mounted by Start is fixed.
func (d *Docker) SetWorkingDir(dir string) { d.opts.dir = dir }

// Run executes command inside the container with docker exec.
func (d *Docker) Run(ctx context.Context, command string, timeout time.Duration) (bool, string, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, "docker", d.execArgs(command)...)

	d.opts.logger.Debug().Str("command", command).Str("container", d.container).Msg("terminal run")
	return runCombined(ctx, cmd, command)
}

// execArgs assembles the docker exec argument list for command.
func (d *Docker) execArgs(command string) []string {
	args := []string{"exec"}
	if d.opts.dir != "" {
		args = append(args, "-w", d.opts.dir)
	}
	for _, kv := range d.opts.env {
		args = append(args, "-e", kv)
	}
	args = append(args, d.container, d.opts.shell, "-c", chain(d.opts.setup, command))
	return args
}
