// Copyright (C) 2017 ScyllaDB

package pipeline

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/pkg/errors"
	"github.com/scylladb/go-log"
	"go.uber.org/multierr"
)

// ExecConfig specifies the argv templates of the external job commands.
// Arguments may reference {masters}, {location} and {suffix} which are
// replaced in place, an argument equal to {tables} is spliced into one
// argument per table.
type ExecConfig struct {
	BackupCmd  []string `yaml:"backup_cmd"`
	RestoreCmd []string `yaml:"restore_cmd"`
}

// DefaultExecConfig returns an ExecConfig initialized with default values.
func DefaultExecConfig() ExecConfig {
	return ExecConfig{
		BackupCmd: []string{
			"spark-submit",
			"--class", "org.apache.kudu.backup.KuduBackup",
			"kudu-backup2_2.11.jar",
			"--kuduMasterAddresses", "{masters}",
			"--rootPath", "{location}",
			"{tables}",
		},
		RestoreCmd: []string{
			"spark-submit",
			"--class", "org.apache.kudu.backup.KuduRestore",
			"kudu-backup2_2.11.jar",
			"--kuduMasterAddresses", "{masters}",
			"--rootPath", "{location}",
			"--tableSuffix", "{suffix}",
			"{tables}",
		},
	}
}

// Validate checks if all the fields are properly set.
func (c ExecConfig) Validate() error {
	var err error
	if len(c.BackupCmd) == 0 {
		err = multierr.Append(err, errors.New("missing backup_cmd"))
	}
	if len(c.RestoreCmd) == 0 {
		err = multierr.Append(err, errors.New("missing restore_cmd"))
	}
	return err
}

// ExecPipeline runs the backup and restore jobs as external commands. Job
// output is forwarded line by line to the logger. Failed jobs are reported
// as errors and never retried, a half written backup must not be reused.
type ExecPipeline struct {
	config ExecConfig
	logger log.Logger
}

var _ Pipeline = (*ExecPipeline)(nil)

// NewExecPipeline creates an ExecPipeline with the given commands.
func NewExecPipeline(config ExecConfig, logger log.Logger) (*ExecPipeline, error) {
	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	return &ExecPipeline{
		config: config,
		logger: logger,
	}, nil
}

// Backup implements Pipeline.
func (p *ExecPipeline) Backup(ctx context.Context, target Target) error {
	return p.run(ctx, "backup", p.config.BackupCmd, target)
}

// Restore implements Pipeline.
func (p *ExecPipeline) Restore(ctx context.Context, target Target) error {
	return p.run(ctx, "restore", p.config.RestoreCmd, target)
}

func (p *ExecPipeline) run(ctx context.Context, job string, argv []string, target Target) error {
	args, err := expand(argv, target)
	if err != nil {
		return errors.Wrapf(err, "%s job", job)
	}
	p.logger.Info(ctx, "Running job", "job", job, "cmd", strings.Join(args, " "))

	out := &logWriter{ctx: ctx, logger: p.logger.Named(job)}
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Stdout = out
	cmd.Stderr = out

	if err := cmd.Run(); err != nil {
		out.Sync()
		return errors.Wrapf(err, "%s job", job)
	}
	out.Sync()

	p.logger.Info(ctx, "Job done", "job", job, "code", cmd.ProcessState.ExitCode())
	return nil
}

// expand renders an argv template for a target.
func expand(argv []string, target Target) ([]string, error) {
	tables := target.SortedTables()
	if len(tables) == 0 {
		return nil, errors.New("no tables")
	}

	r := strings.NewReplacer(
		"{masters}", strings.Join(target.Masters, ","),
		"{location}", target.Location.String(),
		"{suffix}", target.TableSuffix,
	)

	args := make([]string, 0, len(argv)+len(tables)-1)
	for _, a := range argv {
		if a == "{tables}" {
			args = append(args, tables...)
			continue
		}
		args = append(args, r.Replace(a))
	}
	return args, nil
}

// logWriter forwards process output to the logger line by line.
type logWriter struct {
	ctx    context.Context
	logger log.Logger
	buf    []byte
}

func (w *logWriter) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)
	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}
		w.logger.Info(w.ctx, string(w.buf[:i]))
		w.buf = w.buf[i+1:]
	}
	return len(p), nil
}

// Sync flushes an unterminated trailing line.
func (w *logWriter) Sync() {
	if len(w.buf) > 0 {
		w.logger.Info(w.ctx, string(w.buf))
		w.buf = nil
	}
}
