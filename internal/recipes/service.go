package recipes

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/fdg312/mealcraft/internal/blob"
	"github.com/fdg312/mealcraft/internal/storage"
)

var (
	ErrValidation       = errors.New("validation failed")
	ErrPhotosDisabled   = errors.New("photo upload is disabled")
	ErrUnsupportedMedia = errors.New("unsupported media type")
	ErrPhotoTooLarge    = errors.New("photo too large")
)

// Service handles recipe catalog business logic.
type Service struct {
	storage storage.RecipesStorage
	photos  blob.Store
	logger  *zap.Logger

	maxPhotoBytes int64
	allowedMime   map[string]bool
}

// NewService creates a recipe service. photos may be nil (local mode).
func NewService(st storage.RecipesStorage, photos blob.Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		storage:       st,
		photos:        photos,
		logger:        logger.Named("recipes"),
		maxPhotoBytes: 5 << 20,
		allowedMime: map[string]bool{
			"image/jpeg": true,
			"image/png":  true,
			"image/webp": true,
		},
	}
}

// WithUploadLimits overrides the photo size cap and the allowed MIME list
// (comma separated, as in UPLOAD_ALLOWED_MIME).
func (s *Service) WithUploadLimits(maxMB int, allowedMime string) *Service {
	if maxMB > 0 {
		s.maxPhotoBytes = int64(maxMB) << 20
	}
	if allowedMime = strings.TrimSpace(allowedMime); allowedMime != "" {
		s.allowedMime = make(map[string]bool)
		for _, m := range strings.Split(allowedMime, ",") {
			if m = strings.TrimSpace(m); m != "" {
				s.allowedMime[m] = true
			}
		}
	}
	return s
}

// MaxPhotoBytes is the upload cap applied by AttachPhoto.
func (s *Service) MaxPhotoBytes() int64 {
	return s.maxPhotoBytes
}

func (s *Service) List(ctx context.Context) ([]Recipe, error) {
	rows, err := s.storage.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Recipe, len(rows))
	for i, r := range rows {
		out[i] = toDTO(r)
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id int64) (Recipe, error) {
	r, err := s.storage.Get(ctx, id)
	if err != nil {
		return Recipe{}, err
	}
	return toDTO(r), nil
}

func (s *Service) Create(ctx context.Context, req CreateRecipeRequest) (Recipe, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return Recipe{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	created, err := s.storage.Create(ctx, storage.Recipe{
		Name:              req.Name,
		Category:          req.Category,
		MainIngredients:   toStorageIngredients(req.MainIngredients),
		CommonIngredients: req.CommonIngredients,
		Instructions:      req.Instructions,
		PrepTime:          req.PrepTime,
		Portions:          req.Portions,
		FotoURL:           req.FotoURL,
		VideoURL:          req.VideoURL,
	})
	if err != nil {
		return Recipe{}, err
	}

	s.logger.Info("recipe created", zap.Int64("recipe_id", created.ID), zap.String("category", created.Category))
	return toDTO(created), nil
}

func (s *Service) Update(ctx context.Context, id int64, req UpdateRecipeRequest) (Recipe, error) {
	if req.IsEmpty() {
		return Recipe{}, fmt.Errorf("%w: no fields to update", ErrValidation)
	}
	if err := req.Validate(); err != nil {
		return Recipe{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	upd := storage.RecipeUpdate{
		Name:              trimmed(req.Name),
		Category:          trimmed(req.Category),
		CommonIngredients: req.CommonIngredients,
		Instructions:      req.Instructions,
		PrepTime:          req.PrepTime,
		Portions:          req.Portions,
		FotoURL:           req.FotoURL,
		VideoURL:          req.VideoURL,
	}
	if req.MainIngredients != nil {
		ings := toStorageIngredients(*req.MainIngredients)
		upd.MainIngredients = &ings
	}

	updated, err := s.storage.Update(ctx, id, upd)
	if err != nil {
		return Recipe{}, err
	}
	return toDTO(updated), nil
}

// Delete removes the recipe; its meal plan entries go with it.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.storage.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("recipe deleted", zap.Int64("recipe_id", id))
	return nil
}

// AttachPhoto uploads an image to the blob store and points foto_url at it.
func (s *Service) AttachPhoto(ctx context.Context, id int64, data []byte, contentType string) (Recipe, error) {
	if s.photos == nil {
		return Recipe{}, ErrPhotosDisabled
	}

	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}
	if i := strings.Index(contentType, ";"); i >= 0 {
		contentType = strings.TrimSpace(contentType[:i])
	}
	if !s.allowedMime[contentType] {
		return Recipe{}, fmt.Errorf("%w: %s", ErrUnsupportedMedia, contentType)
	}
	if int64(len(data)) > s.maxPhotoBytes {
		return Recipe{}, ErrPhotoTooLarge
	}

	if _, err := s.storage.Get(ctx, id); err != nil {
		return Recipe{}, err
	}

	key := blob.RecipePhotoKey(id, contentType)
	if _, err := s.photos.PutObject(ctx, key, data, contentType); err != nil {
		s.logger.Error("photo upload failed", zap.Int64("recipe_id", id), zap.Error(err))
		return Recipe{}, err
	}

	updated, err := s.storage.SetPhotoURL(ctx, id, s.photos.PublicURL(key))
	if err != nil {
		// the recipe vanished between upload and update; drop the orphan
		if delErr := s.photos.DeleteObject(ctx, key); delErr != nil {
			s.logger.Warn("orphan photo cleanup failed", zap.String("key", key), zap.Error(delErr))
		}
		return Recipe{}, err
	}

	s.logger.Info("recipe photo attached", zap.Int64("recipe_id", id), zap.String("key", key), zap.Int("bytes", len(data)))
	return toDTO(updated), nil
}

func toDTO(r storage.Recipe) Recipe {
	ings := make([]Ingredient, len(r.MainIngredients))
	for i, ing := range r.MainIngredients {
		ings[i] = Ingredient{Name: ing.Name, Unit: ing.Unit, Quantity: ing.Quantity}
	}
	common := r.CommonIngredients
	if common == nil {
		common = []string{}
	}
	return Recipe{
		ID:                r.ID,
		Name:              r.Name,
		Category:          r.Category,
		MainIngredients:   ings,
		CommonIngredients: common,
		Instructions:      r.Instructions,
		PrepTime:          r.PrepTime,
		Portions:          r.Portions,
		FotoURL:           r.FotoURL,
		VideoURL:          r.VideoURL,
	}
}

func toStorageIngredients(list []Ingredient) []storage.Ingredient {
	out := make([]storage.Ingredient, len(list))
	for i, ing := range list {
		out[i] = storage.Ingredient{Name: strings.TrimSpace(ing.Name), Unit: strings.TrimSpace(ing.Unit), Quantity: ing.Quantity}
	}
	return out
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
