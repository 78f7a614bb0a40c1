package batch

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"blob-recolor/internal/imageio"
)

// Job is one input image and where its result goes.
type Job struct {
	Name   string
	Input  string
	Output string
}

// Discover builds jobs for input, which is either an image file or a
// directory scanned recursively for supported images. Output paths mirror
// the input layout under outputDir with the format's extension. Files
// already inside outputDir are skipped so reruns don't reprocess results.
func Discover(input, outputDir string, f imageio.Format) ([]Job, error) {
	info, err := os.Stat(input)
	if err != nil {
		return nil, fmt.Errorf("batch: stat %s: %w", input, err)
	}

	if !info.IsDir() {
		return []Job{newJob(filepath.Base(input), input, outputDir, f)}, nil
	}

	absOut, _ := filepath.Abs(outputDir)
	var jobs []Job
	err = filepath.WalkDir(input, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if abs, _ := filepath.Abs(path); abs == absOut {
				return filepath.SkipDir
			}
			return nil
		}
		if !imageio.IsSupported(path) {
			return nil
		}
		rel, err := filepath.Rel(input, path)
		if err != nil {
			return nil
		}
		jobs = append(jobs, newJob(rel, path, outputDir, f))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("batch: scan %s: %w", input, err)
	}

	sort.Slice(jobs, func(i, j int) bool { return jobs[i].Name < jobs[j].Name })
	return jobs, nil
}

func newJob(rel, input, outputDir string, f imageio.Format) Job {
	stem := strings.TrimSuffix(rel, filepath.Ext(rel))
	return Job{
		Name:   filepath.ToSlash(rel),
		Input:  input,
		Output: filepath.Join(outputDir, stem+f.Ext()),
	}
}
