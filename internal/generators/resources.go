package generators

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/Rana718/fixturegen/internal/config"
	"github.com/Rana718/fixturegen/internal/fixture"
	"github.com/google/uuid"
)

var fileExtensions = []string{
	"pdf", "doc", "docx", "xls", "xlsx", "ppt", "pptx",
	"zip", "rar", "jpg", "png", "gif", "mp4", "mp3",
}

var mimeTypes = map[string]string{
	"pdf":  "application/pdf",
	"doc":  "application/msword",
	"docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"xls":  "application/vnd.ms-excel",
	"xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"ppt":  "application/vnd.ms-powerpoint",
	"pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	"zip":  "application/zip",
	"rar":  "application/x-rar-compressed",
	"jpg":  "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"mp4":  "video/mp4",
	"mp3":  "audio/mpeg",
}

func mimeType(ext string) string {
	if t, ok := mimeTypes[ext]; ok {
		return t
	}
	return "application/octet-stream"
}

// Resources writes uploaded files with their gallery images and free-form tags.
type Resources struct{}

func (*Resources) Name() string        { return "resources" }
func (*Resources) DependsOn() []string { return []string{"users", "categories"} }

func (*Resources) Tables() []string {
	return []string{"resources", "resource_images", "resource_tags"}
}

func (*Resources) Estimate(cfg *config.Config) int {
	return cfg.Counts.Resources * 55 / 10
}

func (*Resources) Rollups() []fixture.Rollup {
	return []fixture.Rollup{
		{ParentTable: "resource_categories", Column: "resource_count", ChildTable: "resources", ForeignKey: "category_id"},
	}
}

func (g *Resources) Run(ctx context.Context, gc *fixture.GenContext) (fixture.Stats, error) {
	cfg := gc.Config
	status, err := fixture.NewWeightedSampler([]int{0, 1, 2}, cfg.Weights.ResourceStatus)
	if err != nil {
		return fixture.Stats{}, fmt.Errorf("resource_status: %w", err)
	}
	extensions, err := fixture.Uniform(fileExtensions)
	if err != nil {
		return fixture.Stats{}, err
	}

	cache := gc.NewIndexCache()
	users, err := cache.LoadRequired(ctx, "user_auth")
	if err != nil {
		return fixture.Stats{}, err
	}
	// category_id is nullable, so an empty pool only disables it.
	categories, err := cache.Load(ctx, "resource_categories")
	if err != nil {
		return fixture.Stats{}, err
	}

	return commitRun(ctx, gc, g.Name(), func(c *fixture.BatchCommitter) (int, error) {
		f := gc.Faker
		for i := 0; i < cfg.Counts.Resources; i++ {
			createdAt := gc.Since(2 * 365 * day)
			ext := extensions.Sample(gc.Rand)

			var categoryID any
			if !categories.Empty() && gc.Chance(0.8) {
				categoryID = categories.Pick(gc.Rand)
			}
			totalChunks := 1
			if gc.Chance(0.1) {
				totalChunks = gc.Between(2, 10)
			}
			id, err := uuid.NewRandomFromReader(gc.Rand)
			if err != nil {
				return 0, fmt.Errorf("failed to generate storage key: %w", err)
			}
			sum := sha256.Sum256(id[:])

			resourceID, err := c.Stage(ctx, "resources", fixture.Row{
				"user_id":        users.Pick(gc.Rand),
				"title":          f.Sentence(8),
				"description":    f.Text(300),
				"document":       optional(gc, 0.5, func() string { return f.Text(1000) }),
				"category_id":    categoryID,
				"file_name":      f.FileName(ext),
				"file_size":      gc.Between(1024, 100*1024*1024),
				"file_type":      mimeType(ext),
				"file_extension": ext,
				"file_hash":      hex.EncodeToString(sum[:]),
				"storage_path":   fmt.Sprintf("/resources/%s/%s.%s", createdAt.Format("2006/01/02"), id, ext),
				"total_chunks":   totalChunks,
				"download_count": gc.Between(0, 2000),
				"view_count":     gc.Between(0, 3000),
				"like_count":     0,
				"comment_count":  0,
				"status":         status.Sample(gc.Rand),
				"created_at":     createdAt,
				"updated_at":     gc.After(createdAt),
			})
			if err != nil {
				return 0, err
			}

			if gc.Chance(0.6) {
				for j, n := 0, gc.Between(1, 5); j < n; j++ {
					if _, err := c.Stage(ctx, "resource_images", fixture.Row{
						"resource_id": resourceID,
						"image_url":   f.ImageURL(800, 600),
						"image_order": j,
						"is_cover":    j == 0,
						"created_at":  createdAt,
					}); err != nil {
						return 0, err
					}
				}
			}

			for j, n := 0, gc.Between(1, 4); j < n; j++ {
				if _, err := c.Stage(ctx, "resource_tags", fixture.Row{
					"resource_id": resourceID,
					"tag_name":    f.Word(),
					"created_at":  createdAt,
				}); err != nil {
					return 0, err
				}
			}

			if err := c.MaybeFlush(ctx); err != nil {
				return 0, err
			}
		}
		return 0, nil
	})
}
