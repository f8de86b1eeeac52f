package productsvc

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/redone-net/marketplace/internal/catalog/dal/interfaces/iproductrepo"
	"github.com/redone-net/marketplace/internal/catalog/service/models/product"
	"github.com/redone-net/marketplace/pkg/httperr"
)

// ProductService manages the product catalog and its images.
type ProductService struct {
	repo     iproductrepo.IProductRepository
	imageDir string
}

// option is a function that configures the ProductService.
type option func(*ProductService)

// MustNewProductService creates a new ProductService and ensures the
// image directory exists.
func MustNewProductService(opts ...option) *ProductService {
	s := &ProductService{}
	for _, opt := range opts {
		opt(s)
	}

	if s.imageDir != "" {
		if err := os.MkdirAll(s.imageDir, 0o755); err != nil {
			panic("unable to create product image directory: " + err.Error())
		}
	}

	return s
}

// WithRepository sets the product repository for the ProductService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithRepository(repo iproductrepo.IProductRepository) option {
	return func(s *ProductService) {
		s.repo = repo
	}
}

// WithImageDir sets the product image directory for the ProductService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithImageDir(dir string) option {
	return func(s *ProductService) {
		s.imageDir = dir
	}
}

// Create persists a new product.
func (s *ProductService) Create(ctx context.Context, p product.Product) (*product.Product, error) {
	return s.repo.Insert(ctx, p)
}

// Update overwrites an existing product.
func (s *ProductService) Update(ctx context.Context, p product.Product) (*product.Product, error) {
	if _, err := s.repo.GetByID(ctx, p.ID); err != nil {
		return nil, err
	}

	return s.repo.Update(ctx, p)
}

// Delete removes a product.
func (s *ProductService) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// List retrieves all products.
func (s *ProductService) List(ctx context.Context) ([]product.Product, error) {
	return s.repo.List(ctx)
}

// GetByID retrieves a single product.
func (s *ProductService) GetByID(ctx context.Context, id int64) (*product.Product, error) {
	return s.repo.GetByID(ctx, id)
}

// SaveImage stores the JPEG image of a product as <imageDir>/<id>.jpg,
// replacing any previous one.
func (s *ProductService) SaveImage(ctx context.Context, id int64, image io.Reader) error {
	exists, err := s.repo.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return httperr.New(httperr.KindNotFound, "product not found")
	}

	target := s.ImagePath(id)
	file, err := os.Create(target)
	if err != nil {
		return err
	}
	defer file.Close()

	if _, err := io.Copy(file, image); err != nil {
		return err
	}

	return nil
}

// ImagePath returns the on-disk path of a product's image.
func (s *ProductService) ImagePath(id int64) string {
	return filepath.Join(s.imageDir, strconv.FormatInt(id, 10)+".jpg")
}

// ImageFile returns the on-disk path of a product's image if one has
// been uploaded.
func (s *ProductService) ImageFile(id int64) (string, error) {
	path := s.ImagePath(id)
	if _, err := os.Stat(path); err != nil {
		return "", httperr.New(httperr.KindNotFound, "image not found")
	}

	return path, nil
}
