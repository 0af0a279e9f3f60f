package scanner

import (
	"os"
	"path/filepath"
)

// DiscoverUnits lists the units a scan of root is partitioned into: one per
// immediate subdirectory, in name order. Files sitting directly in root next
// to subdirectories are collected by one extra non-recursive unit so they are
// not lost. A root without subdirectories becomes the single recursive unit.
//
// If root cannot be listed, the root unit is returned together with the
// error; walking it will log and skip the failure.
func DiscoverUnits(root string) ([]Unit, error) {
	rootUnit := []Unit{{Path: root, Recursive: true, IsRoot: true}}

	entries, err := os.ReadDir(root)
	if err != nil {
		return rootUnit, err
	}

	var units []Unit
	loose := false
	for _, entry := range entries {
		if entry.IsDir() {
			units = append(units, Unit{
				Path:      filepath.Join(root, entry.Name()),
				Recursive: true,
			})
			continue
		}
		loose = true
	}

	if len(units) == 0 {
		return rootUnit, nil
	}
	if loose {
		units = append(units, Unit{Path: root, Recursive: false, IsRoot: true})
	}
	return units, nil
}

// Partition splits units into contiguous batches of ceil(len(units)/threads)
// units each, so there are never more batches than threads.
func Partition(units []Unit, threads int) []Batch {
	if len(units) == 0 {
		return nil
	}
	if threads < 1 {
		threads = 1
	}

	size := (len(units) + threads - 1) / threads
	batches := make([]Batch, 0, (len(units)+size-1)/size)
	for start := 0; start < len(units); start += size {
		end := min(start+size, len(units))
		batches = append(batches, Batch{
			Index: len(batches),
			Units: units[start:end],
		})
	}
	return batches
}
