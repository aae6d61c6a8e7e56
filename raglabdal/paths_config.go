package raglabdal

import (
	"os"

	"github.com/jamesrr39/goutil/errorsx"
)

type PathsConfig struct {
	DataDir         string
	RawDataFilesDir string
	IndexDir        string
	TempDir         string
	TraceDir        string
}

func (pc *PathsConfig) EnsurePaths() errorsx.Error {
	for _, dirPath := range []string{pc.DataDir, pc.RawDataFilesDir, pc.IndexDir, pc.TempDir, pc.TraceDir} {
		err := os.MkdirAll(dirPath, 0755)
		if err != nil {
			return errorsx.Wrap(err)
		}
	}

	return nil
}
