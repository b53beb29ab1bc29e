// Copyright (C) 2017 ScyllaDB

// Package pipelinetest provides a Pipeline fake that moves table data
// through real artifact files. Backup scans tables with the client and
// writes a manifest and per table dumps under the target location, restore
// reads them back and recreates the tables. The file layout matches
// backupspec so round trip tests cover the same IO paths as a real job.
package pipelinetest

import (
	"context"
	"os"
	"path/filepath"

	"github.com/arnaudpue/kudu/pkg/backupspec"
	"github.com/arnaudpue/kudu/pkg/kudu"
	"github.com/arnaudpue/kudu/pkg/kuduclient"
	"github.com/arnaudpue/kudu/pkg/pipeline"
	"github.com/pkg/errors"
	"github.com/scylladb/go-log"
)

// Pipeline is an in-process pipeline.Pipeline implementation.
//
// The Transform hooks, when set, intercept restore and may alter what gets
// recreated. Tests use them to plant table and row level corruption.
type Pipeline struct {
	provider kuduclient.ProviderFunc
	logger   log.Logger

	// OnBackup and OnRestore, when set, run before any job work. An error
	// fails the job.
	OnBackup  func(target pipeline.Target) error
	OnRestore func(target pipeline.Target) error
	// TransformInfo may alter the description of a table about to be
	// recreated by restore.
	TransformInfo func(info *kuduclient.TableInfo)
	// TransformRow may replace a row about to be written by restore.
	TransformRow func(table string, row kudu.Row) kudu.Row
}

var _ pipeline.Pipeline = (*Pipeline)(nil)

// New returns a Pipeline that reaches the cluster through the given
// provider.
func New(provider kuduclient.ProviderFunc, logger log.Logger) *Pipeline {
	return &Pipeline{
		provider: provider,
		logger:   logger,
	}
}

// Backup implements pipeline.Pipeline.
func (p *Pipeline) Backup(ctx context.Context, target pipeline.Target) error {
	if p.OnBackup != nil {
		if err := p.OnBackup(target); err != nil {
			return err
		}
	}
	dir, err := targetDir(target)
	if err != nil {
		return err
	}
	client, err := p.provider(ctx, target.Masters)
	if err != nil {
		return err
	}

	m := backupspec.Manifest{
		Version:   backupspec.ManifestVersion,
		BackupTag: backupspec.NewBackupTag(),
	}

	for _, name := range target.SortedTables() {
		info, err := client.OpenTable(ctx, name)
		if err != nil {
			return errors.Wrapf(err, "open table %s", name)
		}
		rows, err := client.ScanRows(ctx, name)
		if err != nil {
			return errors.Wrapf(err, "scan table %s", name)
		}

		dump := backupspec.TableDump{
			Name:      name,
			Schema:    info.Schema,
			Partition: info.Partition,
			Replicas:  info.NumReplicas,
			Rows:      rows,
		}
		file := backupspec.TableDataFile(name)
		size, err := writeDump(filepath.Join(dir, file), &dump)
		if err != nil {
			return errors.Wrapf(err, "dump table %s", name)
		}
		p.logger.Debug(ctx, "Backed up table", "table", name, "rows", len(rows), "size", size)

		m.Tables = append(m.Tables, backupspec.TableArtifact{
			Table:    name,
			DataFile: file,
			Rows:     int64(len(rows)),
			Size:     size,
		})
		m.Size += size
	}

	if err := writeManifest(filepath.Join(dir, backupspec.ManifestFile), &m); err != nil {
		return errors.Wrap(err, "write manifest")
	}
	p.logger.Info(ctx, "Backup done", "tag", m.BackupTag, "tables", len(m.Tables), "size", m.Size)
	return nil
}

// Restore implements pipeline.Pipeline.
func (p *Pipeline) Restore(ctx context.Context, target pipeline.Target) error {
	if p.OnRestore != nil {
		if err := p.OnRestore(target); err != nil {
			return err
		}
	}
	dir, err := targetDir(target)
	if err != nil {
		return err
	}
	client, err := p.provider(ctx, target.Masters)
	if err != nil {
		return err
	}

	var m backupspec.Manifest
	if err := readManifest(filepath.Join(dir, backupspec.ManifestFile), &m); err != nil {
		return errors.Wrap(err, "read manifest")
	}

	for _, a := range m.Tables {
		if target.Tables != nil && !target.Tables.Has(a.Table) {
			continue
		}
		if err := p.restoreTable(ctx, client, target, filepath.Join(dir, a.DataFile), a.Table); err != nil {
			return errors.Wrapf(err, "restore table %s", a.Table)
		}
	}
	p.logger.Info(ctx, "Restore done", "tag", m.BackupTag)
	return nil
}

func (p *Pipeline) restoreTable(ctx context.Context, client kuduclient.Client, target pipeline.Target, path, table string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var (
		dump    backupspec.TableDump
		session kuduclient.Session
	)
	// The dump header precedes the rows, the restored table can be created
	// at the first row callback.
	ensure := func() error {
		if session != nil {
			return nil
		}
		info := kuduclient.TableInfo{
			Name:        table + target.TableSuffix,
			Schema:      dump.Schema,
			Partition:   dump.Partition,
			NumReplicas: dump.Replicas,
		}
		if p.TransformInfo != nil {
			p.TransformInfo(&info)
		}
		if err := client.CreateTable(ctx, info); err != nil {
			return err
		}
		s, err := client.NewSession(ctx, info.Name)
		if err != nil {
			return err
		}
		session = s
		return nil
	}

	err = dump.ReadRows(f, func(row kudu.Row) error {
		if err := ensure(); err != nil {
			return err
		}
		if p.TransformRow != nil {
			row = p.TransformRow(table, row)
		}
		return session.Apply(ctx, kuduclient.NewInsert(row))
	})
	if err != nil {
		if session != nil {
			session.Close()
		}
		return err
	}
	if err := ensure(); err != nil {
		return err
	}
	if err := session.Flush(ctx); err != nil {
		session.Close()
		return err
	}
	return session.Close()
}

// targetDir resolves the artifact directory of a target, only file system
// locations are supported.
func targetDir(target pipeline.Target) (string, error) {
	if target.Location.Provider != backupspec.FS {
		return "", errors.Errorf("unsupported provider %s", target.Location.Provider)
	}
	return target.Location.Path, nil
}

func writeDump(path string, dump *backupspec.TableDump) (int64, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	if err := dump.Write(f); err != nil {
		f.Close()
		return 0, err
	}
	if err := f.Close(); err != nil {
		return 0, err
	}
	st, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return st.Size(), nil
}

func writeManifest(path string, m *backupspec.Manifest) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := m.Write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func readManifest(path string, m *backupspec.Manifest) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return m.Read(f)
}
