package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	countrydomain "github.com/parityhq/paritybanner/internal/country/domain"
	productdomain "github.com/parityhq/paritybanner/internal/product/domain"
)

// discountFormRow is one row of the dashboard discounts form: a parity group
// with its countries plus this product's stored discount, if any.
type discountFormRow struct {
	CountryGroupID                string                          `json:"country_group_id"`
	Name                          string                          `json:"name"`
	RecommendedDiscountPercentage *float64                        `json:"recommended_discount_percentage,omitempty"`
	Countries                     []countrydomain.CountryResponse `json:"countries"`
	Discount                      *formDiscount                   `json:"discount,omitempty"`
}

type formDiscount struct {
	Coupon             string  `json:"coupon"`
	DiscountPercentage float64 `json:"discount_percentage"`
}

func (s *Server) ListCountryGroups(c *gin.Context) {
	groups, err := s.countrySvc.ListGroups(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"country_groups": groups})
}

// ListProductDiscounts joins the global group listing with this product's
// discount rows so the form can render every group, configured or not.
func (s *Server) ListProductDiscounts(c *gin.Context) {
	ctx := c.Request.Context()

	groups, err := s.countrySvc.ListGroups(ctx)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	discounts, err := s.productSvc.Discounts(ctx, userID(c), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	byGroup := make(map[string]productdomain.DiscountResponse, len(discounts))
	for _, d := range discounts {
		byGroup[d.CountryGroupID] = d
	}

	rows := make([]discountFormRow, 0, len(groups))
	for _, group := range groups {
		row := discountFormRow{
			CountryGroupID:                group.ID,
			Name:                          group.Name,
			RecommendedDiscountPercentage: group.RecommendedDiscountPercentage,
			Countries:                     group.Countries,
		}
		if d, ok := byGroup[group.ID]; ok {
			row.Discount = &formDiscount{
				Coupon:             d.Coupon,
				DiscountPercentage: d.DiscountPercentage,
			}
		}
		rows = append(rows, row)
	}
	c.JSON(http.StatusOK, gin.H{"groups": rows})
}

func (s *Server) ReplaceProductDiscounts(c *gin.Context) {
	var req struct {
		Entries []productdomain.DiscountEntry `json:"entries"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if err := s.productSvc.ReplaceDiscounts(c.Request.Context(), userID(c), c.Param("id"), req.Entries); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
