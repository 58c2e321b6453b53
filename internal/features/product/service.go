package product

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/pankajredekar/shopadmin/internal/models"
	"github.com/pankajredekar/shopadmin/internal/servererrors"
	"github.com/pankajredekar/shopadmin/internal/slug"
	"github.com/pankajredekar/shopadmin/internal/validate"
	"gorm.io/gorm"
)

// slugAttempts bounds retries when a concurrent write takes the generated slug
const slugAttempts = 3

type Storer interface {
	findAll(ctx context.Context) ([]models.Product, error)
	findByID(ctx context.Context, id uint) (*models.Product, error)
	categoryExists(ctx context.Context, id uint) (bool, error)
	slugs() slug.Counter
	transaction(ctx context.Context, fn func(tx Storer) error) error
	create(ctx context.Context, product *models.Product) error
	save(ctx context.Context, product *models.Product, columns []string) error
	addImages(ctx context.Context, images []models.ProductImage) error
	deleteImages(ctx context.Context, productID uint, ids []uint) error
	clearPrimary(ctx context.Context, productID uint) error
	setPrimary(ctx context.Context, productID, imageID uint) error
	countPrimary(ctx context.Context, productID uint) (int64, error)
	delete(ctx context.Context, product *models.Product) error
}

type imageStore interface {
	Save(ctx context.Context, folder, ext string, data []byte) (string, error)
	Delete(ctx context.Context, url string) error
}

type lowStockNotifier interface {
	NotifyLowStock(ctx context.Context, product *models.Product, before, after int) int
}

type Service struct {
	store    Storer
	images   imageStore
	notifier lowStockNotifier
}

func NewService(store Storer, images imageStore, notifier lowStockNotifier) *Service {
	return &Service{
		store:    store,
		images:   images,
		notifier: notifier,
	}
}

// List returns every product newest first with category and images
func (s *Service) List(ctx context.Context) ([]models.Product, error) {
	return s.store.findAll(ctx)
}

func (s *Service) Show(ctx context.Context, id uint) (*models.Product, error) {
	product, err := s.store.findByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, servererrors.NotFound("Product")
	}
	return product, nil
}

// Create stores the product and its images in one transaction. Files are
// written first and removed again when the transaction fails.
func (s *Service) Create(ctx context.Context, req *CreateProductRequest) (*models.Product, error) {
	req.Name = strings.TrimSpace(req.Name)

	fields, err := collect(req, req.BindErrors)
	if err != nil {
		return nil, err
	}
	if req.CategoryID != nil && !fields.Has("category_id") {
		if err := s.checkCategory(ctx, fields, *req.CategoryID); err != nil {
			return nil, err
		}
	}
	var exts []string
	if len(req.Images) == 0 {
		fields.Set("images", validate.Required("images"))
	} else {
		exts = checkImages(fields, req.Images)
	}
	if req.PrimaryImage != nil && !fields.Has("primary_image") && len(req.Images) > 0 && *req.PrimaryImage >= len(req.Images) {
		fields.Add("primary_image", validate.Invalid("primary_image"))
	}
	if len(fields) > 0 {
		return nil, servererrors.Validation(fields)
	}

	urls, err := s.storeImages(ctx, req.Images, exts)
	if err != nil {
		return nil, err
	}

	product := &models.Product{
		Name:       req.Name,
		Price:      *req.Price,
		Stock:      *req.Stock,
		Status:     req.Status,
		CategoryID: *req.CategoryID,
	}
	err = s.writeWithSlug(ctx, product.Name, 0, func(generated string) error {
		product.ID = 0
		product.Slug = generated
		return s.store.transaction(ctx, func(tx Storer) error {
			if err := tx.create(ctx, product); err != nil {
				return err
			}
			if err := attachImages(ctx, tx, product.ID, urls, req.PrimaryImage); err != nil {
				return err
			}
			return ensureSinglePrimary(ctx, tx, product.ID)
		})
	})
	if err != nil {
		s.removeFiles(ctx, urls)
		return nil, err
	}

	return s.Show(ctx, product.ID)
}

// Update applies the fields present in req. Deletions run before additions.
// A low stock alert is considered only when stock was part of the request.
func (s *Service) Update(ctx context.Context, id uint, req *UpdateProductRequest) (*models.Product, error) {
	product, err := s.store.findByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, servererrors.NotFound("Product")
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		req.Name = &name
	}

	fields, err := collect(req, req.BindErrors)
	if err != nil {
		return nil, err
	}
	if req.CategoryID != nil && !fields.Has("category_id") {
		if err := s.checkCategory(ctx, fields, *req.CategoryID); err != nil {
			return nil, err
		}
	}
	exts := checkImages(fields, req.Images)

	owned := make(map[uint]string, len(product.Images))
	for _, img := range product.Images {
		owned[img.ID] = img.ImageURL
	}
	deleting := make(map[uint]bool, len(req.DeleteImages))
	for i, imageID := range req.DeleteImages {
		if _, ok := owned[imageID]; !ok {
			key := fmt.Sprintf("delete_images.%d", i)
			fields.Add(key, validate.Invalid(key))
			continue
		}
		deleting[imageID] = true
	}
	if req.PrimaryImage != nil && !fields.Has("primary_image") {
		p := *req.PrimaryImage
		if len(req.Images) > 0 {
			if p >= len(req.Images) {
				fields.Add("primary_image", validate.Invalid("primary_image"))
			}
		} else if _, ok := owned[uint(p)]; !ok || deleting[uint(p)] {
			fields.Add("primary_image", validate.Invalid("primary_image"))
		}
	}
	if len(fields) > 0 {
		return nil, servererrors.Validation(fields)
	}

	urls, err := s.storeImages(ctx, req.Images, exts)
	if err != nil {
		return nil, err
	}

	before := product.Stock
	var columns []string
	nameChanged := false
	if req.Name != nil {
		nameChanged = *req.Name != product.Name
		product.Name = *req.Name
		columns = append(columns, "name")
	}
	if nameChanged {
		columns = append(columns, "slug")
	}
	if req.Price != nil {
		product.Price = *req.Price
		columns = append(columns, "price")
	}
	if req.Stock != nil {
		product.Stock = *req.Stock
		columns = append(columns, "stock")
	}
	if req.Status != nil {
		product.Status = *req.Status
		columns = append(columns, "status")
	}
	if req.CategoryID != nil {
		product.CategoryID = *req.CategoryID
		product.Category = nil
		columns = append(columns, "category_id")
	}

	apply := func(tx Storer) error {
		if err := tx.save(ctx, product, columns); err != nil {
			return err
		}
		if len(req.DeleteImages) > 0 {
			if err := tx.deleteImages(ctx, product.ID, req.DeleteImages); err != nil {
				return err
			}
		}
		if len(urls) > 0 {
			if req.PrimaryImage != nil {
				if err := tx.clearPrimary(ctx, product.ID); err != nil {
					return err
				}
			}
			if err := attachImages(ctx, tx, product.ID, urls, req.PrimaryImage); err != nil {
				return err
			}
		} else if req.PrimaryImage != nil {
			if err := tx.clearPrimary(ctx, product.ID); err != nil {
				return err
			}
			if err := tx.setPrimary(ctx, product.ID, uint(*req.PrimaryImage)); err != nil {
				return err
			}
		}
		return ensureSinglePrimary(ctx, tx, product.ID)
	}

	if nameChanged {
		err = s.writeWithSlug(ctx, product.Name, product.ID, func(generated string) error {
			product.Slug = generated
			return s.store.transaction(ctx, apply)
		})
	} else {
		err = s.store.transaction(ctx, apply)
	}
	if err != nil {
		s.removeFiles(ctx, urls)
		return nil, err
	}

	removed := make([]string, 0, len(deleting))
	for imageID := range deleting {
		removed = append(removed, owned[imageID])
	}
	s.removeFiles(ctx, removed)

	if req.Stock != nil {
		s.notifier.NotifyLowStock(ctx, product, before, *req.Stock)
	}

	return s.Show(ctx, product.ID)
}

// Delete removes the product's images and soft-deletes the product
func (s *Service) Delete(ctx context.Context, id uint) error {
	product, err := s.store.findByID(ctx, id)
	if err != nil {
		return err
	}
	if product == nil {
		return servererrors.NotFound("Product")
	}

	err = s.store.transaction(ctx, func(tx Storer) error {
		if err := tx.deleteImages(ctx, product.ID, nil); err != nil {
			return err
		}
		return tx.delete(ctx, product)
	})
	if err != nil {
		return err
	}

	urls := make([]string, 0, len(product.Images))
	for _, img := range product.Images {
		urls = append(urls, img.ImageURL)
	}
	s.removeFiles(ctx, urls)
	return nil
}

func (s *Service) checkCategory(ctx context.Context, fields validate.FieldErrors, categoryID uint) error {
	exists, err := s.store.categoryExists(ctx, categoryID)
	if err != nil {
		return err
	}
	if !exists {
		fields.Add("category_id", validate.Invalid("category_id"))
	}
	return nil
}

func (s *Service) storeImages(ctx context.Context, images []ImageUpload, exts []string) ([]string, error) {
	urls := make([]string, 0, len(images))
	for i, img := range images {
		url, err := s.images.Save(ctx, imageFolder, exts[i], img.Data)
		if err != nil {
			s.removeFiles(ctx, urls)
			return nil, fmt.Errorf("failed to store image %s: %w", img.Filename, err)
		}
		urls = append(urls, url)
	}
	return urls, nil
}

func (s *Service) removeFiles(ctx context.Context, urls []string) {
	for _, url := range urls {
		if err := s.images.Delete(ctx, url); err != nil {
			log.Printf("product: failed to remove %s: %v", url, err)
		}
	}
}

func (s *Service) writeWithSlug(ctx context.Context, name string, excludeID uint, write func(generated string) error) error {
	err := slug.Write(ctx, name, excludeID, s.store.slugs(), slugAttempts, write)
	if errors.Is(err, slug.ErrExhausted) {
		return servererrors.Conflict(servererrors.ErrSlugConflict)
	}
	return err
}

// attachImages stores image rows for urls, the one at index primary flagged
func attachImages(ctx context.Context, tx Storer, productID uint, urls []string, primary *int) error {
	images := make([]models.ProductImage, len(urls))
	for i, url := range urls {
		images[i] = models.ProductImage{
			ProductID: productID,
			ImageURL:  url,
			IsPrimary: primary != nil && *primary == i,
		}
	}
	if err := tx.addImages(ctx, images); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return servererrors.Conflict(servererrors.ErrPrimaryImage)
		}
		return err
	}
	return nil
}

func ensureSinglePrimary(ctx context.Context, tx Storer, productID uint) error {
	count, err := tx.countPrimary(ctx, productID)
	if err != nil {
		return err
	}
	if count > 1 {
		return servererrors.Conflict(servererrors.ErrPrimaryImage)
	}
	return nil
}

// collect validates req and lets form parse failures replace tag messages
func collect(req any, bind validate.FieldErrors) (validate.FieldErrors, error) {
	fields, err := validate.Collect(req)
	if err != nil {
		return nil, err
	}
	for field, messages := range bind {
		fields.Set(field, messages...)
	}
	return fields, nil
}
