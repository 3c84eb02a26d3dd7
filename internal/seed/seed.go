package seed

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	countrydomain "github.com/parityhq/paritybanner/internal/country/domain"
	countryrepo "github.com/parityhq/paritybanner/internal/country/repository"
	"gorm.io/gorm"
)

//go:embed parity_groups.json
var parityGroupsJSON []byte

type seedGroup struct {
	Name                          string        `json:"name"`
	RecommendedDiscountPercentage float64       `json:"recommended_discount_percentage"`
	Countries                     []seedCountry `json:"countries"`
}

type seedCountry struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

// EnsureParityGroups upserts the embedded parity dataset on startup. Groups
// match on name and countries on code, so reruns update in place and a
// country can move between groups across releases without duplication.
func EnsureParityGroups(conn *gorm.DB) error {
	var groups []seedGroup
	if err := json.Unmarshal(parityGroupsJSON, &groups); err != nil {
		return fmt.Errorf("decode parity dataset: %w", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	repo := countryrepo.Provide()
	now := time.Now().UTC()

	for _, group := range groups {
		discount := group.RecommendedDiscountPercentage
		err := repo.UpsertGroup(ctx, conn, &countrydomain.CountryGroup{
			ID:                            node.Generate().Int64(),
			Name:                          group.Name,
			RecommendedDiscountPercentage: &discount,
			CreatedAt:                     now,
			UpdatedAt:                     now,
		})
		if err != nil {
			return fmt.Errorf("seed group %s: %w", group.Name, err)
		}
	}

	// Conflicting inserts keep their original ids, so group ids are resolved
	// from the table rather than from the rows written above.
	stored, err := repo.FindAllGroups(ctx, conn)
	if err != nil {
		return err
	}
	idsByName := make(map[string]int64, len(stored))
	for _, group := range stored {
		idsByName[group.Name] = group.ID
	}

	for _, group := range groups {
		groupID, ok := idsByName[group.Name]
		if !ok {
			return fmt.Errorf("seed group %s missing after upsert", group.Name)
		}
		for _, country := range group.Countries {
			err := repo.UpsertCountry(ctx, conn, &countrydomain.Country{
				ID:             node.Generate().Int64(),
				Name:           country.Name,
				Code:           country.Code,
				CountryGroupID: groupID,
				CreatedAt:      now,
				UpdatedAt:      now,
			})
			if err != nil {
				return fmt.Errorf("seed country %s: %w", country.Code, err)
			}
		}
	}
	return nil
}
