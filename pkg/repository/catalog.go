package repository

import (
	"fmt"

	"github.com/reversion-fs/reversion/pkg/checksum"
	"github.com/reversion-fs/reversion/pkg/repository/models"
)

// catalog adapts *Repository to blockstore.Catalog, backing the "block" and
// "chunk_reference" tables.
type catalog Repository

func (c *catalog) repo() *Repository { return (*Repository)(c) }

// InsertBlock records checksum's row. Called by blockstore.Store.Put after
// the on-disk file is durable. Idempotent: an existing row is left alone.
func (c *catalog) InsertBlock(sum checksum.Checksum, length int64) error {
	row := models.Block{Checksum: sum.String(), Length: length}
	err := c.repo().db.Where(models.Block{Checksum: sum.String()}).
		Attrs(models.Block{Length: length}).
		FirstOrCreate(&row).Error
	if err != nil {
		return fmt.Errorf("repository: inserting block row: %w", err)
	}
	return nil
}

// DeleteBlock removes checksum's row, if any.
func (c *catalog) DeleteBlock(sum checksum.Checksum) error {
	err := c.repo().db.Where("checksum = ?", sum.String()).Delete(&models.Block{}).Error
	if err != nil {
		return fmt.Errorf("repository: deleting block row: %w", err)
	}
	return nil
}

// BlockExists reports whether checksum has a row.
func (c *catalog) BlockExists(sum checksum.Checksum) (bool, error) {
	var count int64
	err := c.repo().db.Model(&models.Block{}).Where("checksum = ?", sum.String()).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("repository: checking block row: %w", err)
	}
	return count > 0, nil
}

// TotalSize returns the sum of every catalogued block's recorded length.
func (c *catalog) TotalSize() (int64, error) {
	var total int64
	err := c.repo().db.Model(&models.Block{}).Select("COALESCE(SUM(length), 0)").Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("repository: summing block sizes: %w", err)
	}
	return total, nil
}

// ReferencedChecksums returns every checksum with at least one row in
// chunk_reference, for blockstore.Store.Sweep.
func (c *catalog) ReferencedChecksums() (map[checksum.Checksum]struct{}, error) {
	var hexes []string
	err := c.repo().db.Model(&models.ChunkReference{}).Distinct("block_checksum").Pluck("block_checksum", &hexes).Error
	if err != nil {
		return nil, fmt.Errorf("repository: loading referenced checksums: %w", err)
	}

	out := make(map[checksum.Checksum]struct{}, len(hexes))
	for _, hex := range hexes {
		sum, err := checksum.Parse(hex)
		if err != nil {
			return nil, fmt.Errorf("repository: parsing stored checksum %q: %w", hex, err)
		}
		out[sum] = struct{}{}
	}
	return out, nil
}
