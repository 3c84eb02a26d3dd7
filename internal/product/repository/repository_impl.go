package repository

import (
	"context"

	"github.com/parityhq/paritybanner/internal/product/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, product *domain.Product) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO products (id, user_id, name, url, description, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		product.ID,
		product.UserID,
		product.Name,
		product.URL,
		product.Description,
		product.CreatedAt,
		product.UpdatedAt,
	).Error
}

func (r *repo) CreateCustomization(ctx context.Context, db *gorm.DB, c *domain.ProductCustomization) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO product_customizations
		 (id, product_id, location_message, background_color, text_color, font_size, banner_container, is_sticky, class_prefix, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID,
		c.ProductID,
		c.LocationMessage,
		c.BackgroundColor,
		c.TextColor,
		c.FontSize,
		c.BannerContainer,
		c.IsSticky,
		c.ClassPrefix,
		c.CreatedAt,
		c.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, userID string, id int64) (*domain.Product, error) {
	var p domain.Product
	err := db.WithContext(ctx).Raw(
		`SELECT id, user_id, name, url, description, created_at, updated_at
		 FROM products WHERE user_id = ? AND id = ?`,
		userID,
		id,
	).Scan(&p).Error
	if err != nil {
		return nil, err
	}
	if p.ID == 0 {
		return nil, nil
	}
	return &p, nil
}

func (r *repo) FindAllByUser(ctx context.Context, db *gorm.DB, userID string, limit int) ([]domain.Product, error) {
	var items []domain.Product
	stmt := db.WithContext(ctx).
		Model(&domain.Product{}).
		Where("user_id = ?", userID).
		Order("created_at DESC")
	if limit > 0 {
		stmt = stmt.Limit(limit)
	}
	if err := stmt.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) CountByUser(ctx context.Context, db *gorm.DB, userID string) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(*) FROM products WHERE user_id = ?`,
		userID,
	).Scan(&count).Error
	return count, err
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, product *domain.Product) (int64, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE products
		 SET name = ?, url = ?, description = ?, updated_at = ?
		 WHERE user_id = ? AND id = ?`,
		product.Name,
		product.URL,
		product.Description,
		product.UpdatedAt,
		product.UserID,
		product.ID,
	)
	return result.RowsAffected, result.Error
}

// Delete removes the product and its dependents. Child rows are deleted
// explicitly so the contract holds on dialects without enforced foreign keys.
// Ownership is verified before anything is touched: a non-owner call must not
// reach another user's customization, discounts, or view history.
func (r *repo) Delete(ctx context.Context, db *gorm.DB, userID string, id int64) (int64, error) {
	tx := db.WithContext(ctx)
	var owned int64
	if err := tx.Raw(
		`SELECT COUNT(*) FROM products WHERE user_id = ? AND id = ?`,
		userID,
		id,
	).Scan(&owned).Error; err != nil {
		return 0, err
	}
	if owned == 0 {
		return 0, nil
	}
	if err := tx.Exec(`DELETE FROM product_views WHERE product_id = ?`, id).Error; err != nil {
		return 0, err
	}
	if err := tx.Exec(`DELETE FROM country_group_discounts WHERE product_id = ?`, id).Error; err != nil {
		return 0, err
	}
	if err := tx.Exec(`DELETE FROM product_customizations WHERE product_id = ?`, id).Error; err != nil {
		return 0, err
	}
	result := tx.Exec(`DELETE FROM products WHERE user_id = ? AND id = ?`, userID, id)
	return result.RowsAffected, result.Error
}

func (r *repo) DeleteByUser(ctx context.Context, db *gorm.DB, userID string) ([]int64, error) {
	var ids []int64
	tx := db.WithContext(ctx)
	if err := tx.Raw(`SELECT id FROM products WHERE user_id = ?`, userID).Scan(&ids).Error; err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	if err := tx.Exec(`DELETE FROM product_views WHERE product_id IN ?`, ids).Error; err != nil {
		return nil, err
	}
	if err := tx.Exec(`DELETE FROM country_group_discounts WHERE product_id IN ?`, ids).Error; err != nil {
		return nil, err
	}
	if err := tx.Exec(`DELETE FROM product_customizations WHERE product_id IN ?`, ids).Error; err != nil {
		return nil, err
	}
	if err := tx.Exec(`DELETE FROM products WHERE user_id = ?`, userID).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *repo) FindCustomization(ctx context.Context, db *gorm.DB, productID int64) (*domain.ProductCustomization, error) {
	var c domain.ProductCustomization
	err := db.WithContext(ctx).Raw(
		`SELECT id, product_id, location_message, background_color, text_color, font_size, banner_container, is_sticky, class_prefix, created_at, updated_at
		 FROM product_customizations WHERE product_id = ?`,
		productID,
	).Scan(&c).Error
	if err != nil {
		return nil, err
	}
	if c.ID == 0 {
		return nil, nil
	}
	return &c, nil
}

func (r *repo) UpdateCustomization(ctx context.Context, db *gorm.DB, c *domain.ProductCustomization) error {
	return db.WithContext(ctx).Exec(
		`UPDATE product_customizations
		 SET location_message = ?, background_color = ?, text_color = ?, font_size = ?, banner_container = ?, is_sticky = ?, class_prefix = ?, updated_at = ?
		 WHERE product_id = ?`,
		c.LocationMessage,
		c.BackgroundColor,
		c.TextColor,
		c.FontSize,
		c.BannerContainer,
		c.IsSticky,
		c.ClassPrefix,
		c.UpdatedAt,
		c.ProductID,
	).Error
}

func (r *repo) FindDiscounts(ctx context.Context, db *gorm.DB, productID int64) ([]domain.CountryGroupDiscount, error) {
	var items []domain.CountryGroupDiscount
	err := db.WithContext(ctx).Raw(
		`SELECT country_group_id, product_id, coupon, discount_percentage, created_at, updated_at
		 FROM country_group_discounts WHERE product_id = ?`,
		productID,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) FindDiscountForGroup(ctx context.Context, db *gorm.DB, productID, groupID int64) (*domain.CountryGroupDiscount, error) {
	var d domain.CountryGroupDiscount
	err := db.WithContext(ctx).Raw(
		`SELECT country_group_id, product_id, coupon, discount_percentage, created_at, updated_at
		 FROM country_group_discounts WHERE product_id = ? AND country_group_id = ?`,
		productID,
		groupID,
	).Scan(&d).Error
	if err != nil {
		return nil, err
	}
	if d.ProductID == 0 {
		return nil, nil
	}
	return &d, nil
}

func (r *repo) DeleteDiscounts(ctx context.Context, db *gorm.DB, productID int64, groupIDs []int64) error {
	if len(groupIDs) == 0 {
		return nil
	}
	return db.WithContext(ctx).Exec(
		`DELETE FROM country_group_discounts WHERE product_id = ? AND country_group_id IN ?`,
		productID,
		groupIDs,
	).Error
}

func (r *repo) UpsertDiscounts(ctx context.Context, db *gorm.DB, discounts []domain.CountryGroupDiscount) error {
	if len(discounts) == 0 {
		return nil
	}
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "country_group_id"}, {Name: "product_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"coupon", "discount_percentage", "updated_at"}),
	}).Create(&discounts).Error
}

func (r *repo) FindBanner(ctx context.Context, db *gorm.DB, id int64, url string) (*domain.Product, error) {
	var p domain.Product
	err := db.WithContext(ctx).Raw(
		`SELECT id, user_id, name, url, description, created_at, updated_at
		 FROM products WHERE id = ? AND url = ?`,
		id,
		url,
	).Scan(&p).Error
	if err != nil {
		return nil, err
	}
	if p.ID == 0 {
		return nil, nil
	}
	return &p, nil
}
