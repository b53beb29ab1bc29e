// Copyright (C) 2017 ScyllaDB

package backupspec

import (
	"compress/gzip"
	"encoding/json"
	"io"

	"github.com/arnaudpue/kudu/pkg/kudu"
	jsoniter "github.com/json-iterator/go"
)

// Artifact file names inside a staging location.
const (
	ManifestFile = "manifest.json.gz"

	// ManifestVersion is written by this code, readers accept nothing else.
	ManifestVersion = "v1"
)

// TableDataFile returns the name of the data artifact of a table.
func TableDataFile(table string) string {
	return "table_" + table + ".json.gz"
}

// Manifest describes the artifacts one backup run left in a staging
// location.
type Manifest struct {
	Version   string          `json:"version"`
	BackupTag string          `json:"backup_tag"`
	Tables    []TableArtifact `json:"tables"`
	Size      int64           `json:"size"`
}

// TableArtifact points at the data artifact of one backed up table.
type TableArtifact struct {
	Table    string `json:"table"`
	DataFile string `json:"data_file"`
	Rows     int64  `json:"rows"`
	Size     int64  `json:"size"`
}

// Read loads a gzipped manifest.
func (m *Manifest) Read(r io.Reader) error {
	gr, err := gzip.NewReader(r)
	if err != nil {
		return err
	}

	if err := json.NewDecoder(gr).Decode(m); err != nil {
		return err
	}
	return gr.Close()
}

// Write stores the manifest gzipped.
func (m *Manifest) Write(w io.Writer) error {
	gw := gzip.NewWriter(w)

	if err := json.NewEncoder(gw).Encode(m); err != nil {
		return err
	}

	return gw.Close()
}

// ReadForEachTableIter streams table artifacts from the manifest JSON and
// performs a callback on each as they are read in. It also populates the
// metadata fields of the Manifest.
func (m *Manifest) ReadForEachTableIter(r io.Reader, f func(t TableArtifact)) error {
	gr, err := gzip.NewReader(r)
	if err != nil {
		return err
	}

	iter := jsoniter.Parse(jsoniter.ConfigDefault, gr, 1024)

	for k := iter.ReadObject(); iter.Error == nil && k != ""; k = iter.ReadObject() {
		switch k {
		case "version":
			iter.ReadVal(&m.Version)
		case "backup_tag":
			iter.ReadVal(&m.BackupTag)
		case "size":
			iter.ReadVal(&m.Size)
		case "tables":
			if !iter.ReadArrayCB(func(it *jsoniter.Iterator) bool {
				var t TableArtifact
				it.ReadVal(&t)
				f(t)
				return true
			}) {
				return iter.Error
			}
		default:
			iter.Skip()
		}
	}

	if iter.Error == io.EOF {
		return nil
	}
	return iter.Error
}

// TableDump is the data artifact of one table, its live schema snapshot and
// every row it held at backup time. Write lays the rows out last so that
// ReadRows can populate all other fields before the first row callback.
type TableDump struct {
	Name      string               `json:"name"`
	Schema    kudu.Schema          `json:"schema"`
	Partition kudu.PartitionSchema `json:"partition"`
	Replicas  int                  `json:"replicas"`
	Rows      []kudu.Row           `json:"rows"`
}

// Read loads a gzipped table dump with all rows materialized.
func (d *TableDump) Read(r io.Reader) error {
	gr, err := gzip.NewReader(r)
	if err != nil {
		return err
	}

	if err := json.NewDecoder(gr).Decode(d); err != nil {
		return err
	}
	return gr.Close()
}

// Write stores the table dump gzipped.
func (d *TableDump) Write(w io.Writer) error {
	gw := gzip.NewWriter(w)

	if err := json.NewEncoder(gw).Encode(d); err != nil {
		return err
	}

	return gw.Close()
}

// ReadRows streams rows from a table dump without materializing them and
// performs a callback on each. Metadata fields of the TableDump are
// populated, d.Rows stays empty. A callback error stops the iteration and
// is returned.
func (d *TableDump) ReadRows(r io.Reader, f func(row kudu.Row) error) error {
	gr, err := gzip.NewReader(r)
	if err != nil {
		return err
	}

	iter := jsoniter.Parse(jsoniter.ConfigDefault, gr, 1024)

	var ferr error
	for k := iter.ReadObject(); iter.Error == nil && k != ""; k = iter.ReadObject() {
		switch k {
		case "name":
			iter.ReadVal(&d.Name)
		case "schema":
			iter.ReadVal(&d.Schema)
		case "partition":
			iter.ReadVal(&d.Partition)
		case "replicas":
			iter.ReadVal(&d.Replicas)
		case "rows":
			if !iter.ReadArrayCB(func(it *jsoniter.Iterator) bool {
				var row kudu.Row
				it.ReadVal(&row)
				if it.Error != nil {
					return false
				}
				ferr = f(row)
				return ferr == nil
			}) {
				if ferr != nil {
					return ferr
				}
				return iter.Error
			}
		default:
			iter.Skip()
		}
	}

	if iter.Error == io.EOF {
		return nil
	}
	return iter.Error
}
