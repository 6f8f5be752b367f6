package usecase

import (
	"context"
	"log"

	"zabibufresh/internal/domain/entity"
	"zabibufresh/internal/domain/repository"
	"zabibufresh/pkg/errors"
)

type ProductUseCase struct {
	productRepo  repository.ProductRepository
	userRepo     repository.UserRepository
	fileMetaRepo repository.FileMetadataRepository
	fileStorage  FileStorage
}

func NewProductUseCase(
	productRepo repository.ProductRepository,
	userRepo repository.UserRepository,
	fileMetaRepo repository.FileMetadataRepository,
	fileStorage FileStorage,
) *ProductUseCase {
	return &ProductUseCase{
		productRepo:  productRepo,
		userRepo:     userRepo,
		fileMetaRepo: fileMetaRepo,
		fileStorage:  fileStorage,
	}
}

type CreateProductInput struct {
	Title       string
	Description string
	ImageURL    string
	Price       float64
	Quantity    int
	Location    string
}

func (uc *ProductUseCase) CreateProduct(ctx context.Context, sellerID string, input CreateProductInput) (*entity.Product, error) {
	seller, err := uc.userRepo.GetByID(ctx, sellerID)
	if err != nil {
		return nil, err
	}

	if !seller.IsSeller() {
		log.Printf("CreateProduct Error: user %s with role %q attempted to list a product", sellerID, seller.Role)
		return nil, errors.Unauthorized("Only sellers can list products", nil)
	}

	if input.Price < 0 {
		return nil, errors.ValidationFailed("Price must not be negative", nil)
	}
	if input.Quantity < 0 {
		return nil, errors.ValidationFailed("Quantity must not be negative", nil)
	}

	product := &entity.Product{
		SellerID:    sellerID,
		Title:       input.Title,
		Description: input.Description,
		ImageURL:    input.ImageURL,
		Price:       input.Price,
		Quantity:    input.Quantity,
		Location:    input.Location,
	}

	if err := uc.productRepo.Create(ctx, product); err != nil {
		log.Printf("CreateProduct Error: failed to create product for seller %s: %v", sellerID, err)
		return nil, err
	}

	return product, nil
}

func (uc *ProductUseCase) GetProductByID(ctx context.Context, id string) (*entity.Product, error) {
	product, err := uc.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return product, nil
}

func (uc *ProductUseCase) ListProducts(ctx context.Context, location string, minPrice, maxPrice float64, sort string, page, limit int) ([]*entity.Product, int64, error) {
	filter := make(map[string]interface{})
	if location != "" {
		filter["location"] = location
	}

	offset := (page - 1) * limit
	products, total, err := uc.productRepo.List(ctx, filter, sort, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	// Price bounds are applied in memory; the store only supports
	// equality filters.
	if minPrice > 0 || maxPrice > 0 {
		var filtered []*entity.Product
		for _, p := range products {
			if minPrice > 0 && p.Price < minPrice {
				continue
			}
			if maxPrice > 0 && p.Price > maxPrice {
				continue
			}
			filtered = append(filtered, p)
		}
		products = filtered
	}

	return products, total, nil
}

func (uc *ProductUseCase) SearchProducts(ctx context.Context, query, location string, page, limit int) ([]*entity.Product, int64, error) {
	filter := make(map[string]interface{})
	if location != "" {
		filter["location"] = location
	}

	offset := (page - 1) * limit
	return uc.productRepo.SearchByTitle(ctx, query, filter, limit, offset)
}

func (uc *ProductUseCase) ListBySellerID(ctx context.Context, sellerID string, limit, offset int) ([]*entity.Product, int64, error) {
	return uc.productRepo.ListBySellerID(ctx, sellerID, limit, offset)
}

func (uc *ProductUseCase) UpdateProduct(ctx context.Context, id, sellerID string, input CreateProductInput) (*entity.Product, error) {
	product, err := uc.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if product.SellerID != sellerID {
		log.Printf("UpdateProduct Error: user %s attempted to update product %s owned by %s", sellerID, id, product.SellerID)
		return nil, errors.Unauthorized("Only the owning seller can update this product", nil)
	}

	if input.Price < 0 {
		return nil, errors.ValidationFailed("Price must not be negative", nil)
	}
	if input.Quantity < 0 {
		return nil, errors.ValidationFailed("Quantity must not be negative", nil)
	}

	product.Title = input.Title
	product.Description = input.Description
	product.Price = input.Price
	product.Quantity = input.Quantity
	product.Location = input.Location
	if input.ImageURL != "" {
		product.ImageURL = input.ImageURL
	}

	if err := uc.productRepo.Update(ctx, product); err != nil {
		log.Printf("UpdateProduct Error: failed to update product %s: %v", id, err)
		return nil, err
	}

	return product, nil
}

// DeleteProduct removes the row and cascades to the image object and its
// metadata record. A missing image is not an error.
func (uc *ProductUseCase) DeleteProduct(ctx context.Context, id, sellerID string) error {
	product, err := uc.productRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if product.SellerID != sellerID {
		log.Printf("DeleteProduct Error: user %s attempted to delete product %s owned by %s", sellerID, id, product.SellerID)
		return errors.Unauthorized("Only the owning seller can delete this product", nil)
	}

	if err := uc.productRepo.Delete(ctx, id); err != nil {
		log.Printf("DeleteProduct Error: failed to delete product %s: %v", id, err)
		return err
	}

	if product.ImageURL != "" {
		if err := uc.fileStorage.DeleteFile(ctx, product.ImageURL); err != nil {
			log.Printf("DeleteProduct Warning: failed to remove image for product %s: %v", id, err)
		}
		if meta, err := uc.fileMetaRepo.GetByURL(ctx, product.ImageURL); err == nil {
			if err := uc.fileMetaRepo.Delete(ctx, meta.ID); err != nil {
				log.Printf("DeleteProduct Warning: failed to remove image metadata for product %s: %v", id, err)
			}
		}
	}

	return nil
}
