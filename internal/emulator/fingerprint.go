package emulator

import (
	"crypto/sha1"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"math"
	"slices"

	"github.com/forest-guardian/lakewatch/internal/raster"
)

// Fingerprint hashes the whole catalogue: grid, ids, properties, band names
// and every pixel. Equal catalogues give equal fingerprints.
func (fx *Fixtures) Fingerprint() (string, error) {
	h := sha1.New()
	enc := json.NewEncoder(h)
	put := func(vs ...any) error {
		for _, v := range vs {
			if err := enc.Encode(v); err != nil {
				return err
			}
		}
		return nil
	}

	if err := put(fx.Grid); err != nil {
		return "", fmt.Errorf("fingerprint grid: %w", err)
	}
	for _, id := range slices.Sorted(maps.Keys(fx.Images)) {
		img := fx.Images[id]
		if err := put("image", id, img.Properties); err != nil {
			return "", fmt.Errorf("fingerprint image %s: %w", id, err)
		}
		for _, b := range img.Bands {
			if err := put(b.Name); err != nil {
				return "", err
			}
			hashPixels(h, b.Raster)
		}
	}
	for _, id := range slices.Sorted(maps.Keys(fx.Collections)) {
		c := fx.Collections[id]
		if err := put("collection", id, c.BandNames); err != nil {
			return "", fmt.Errorf("fingerprint collection %s: %w", id, err)
		}
		for _, s := range c.Scenes {
			if err := put(s.ID, s.Start, s.Properties); err != nil {
				return "", fmt.Errorf("fingerprint scene %s: %w", s.ID, err)
			}
			for _, name := range slices.Sorted(maps.Keys(s.Bands)) {
				if err := put(name); err != nil {
					return "", err
				}
				hashPixels(h, s.Bands[name])
			}
		}
	}
	for _, id := range slices.Sorted(maps.Keys(fx.Tables)) {
		if err := put("table", id, fx.Tables[id]); err != nil {
			return "", fmt.Errorf("fingerprint table %s: %w", id, err)
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// hashPixels writes value and mask per pixel. Masked values are not hashed.
func hashPixels(w io.Writer, r *raster.Raster) {
	buf := make([]byte, 9)
	for i, v := range r.Values {
		clear(buf)
		if r.Valid[i] {
			binary.LittleEndian.PutUint64(buf, math.Float64bits(v))
			buf[8] = 1
		}
		_, _ = w.Write(buf)
	}
}
