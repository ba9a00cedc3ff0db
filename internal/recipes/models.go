package recipes

import (
	"fmt"
	"strings"
)

type Ingredient struct {
	Name     string  `json:"name"`
	Unit     string  `json:"unit"`
	Quantity float64 `json:"quantity"`
}

type Recipe struct {
	ID                int64        `json:"id"`
	Name              string       `json:"name"`
	Category          string       `json:"category"`
	MainIngredients   []Ingredient `json:"main_ingredients"`
	CommonIngredients []string     `json:"common_ingredients"`
	Instructions      string       `json:"instructions"`
	PrepTime          int          `json:"prep_time"`
	Portions          int          `json:"portions"`
	FotoURL           *string      `json:"foto_url"`
	VideoURL          *string      `json:"video_url"`
}

type CreateRecipeRequest struct {
	Name              string       `json:"name"`
	Category          string       `json:"category"`
	MainIngredients   []Ingredient `json:"main_ingredients"`
	CommonIngredients []string     `json:"common_ingredients"`
	Instructions      string       `json:"instructions"`
	PrepTime          int          `json:"prep_time"`
	Portions          int          `json:"portions"`
	FotoURL           *string      `json:"foto_url"`
	VideoURL          *string      `json:"video_url"`
}

// UpdateRecipeRequest is a partial update: only non-nil fields change.
type UpdateRecipeRequest struct {
	Name              *string       `json:"name,omitempty"`
	Category          *string       `json:"category,omitempty"`
	MainIngredients   *[]Ingredient `json:"main_ingredients,omitempty"`
	CommonIngredients *[]string     `json:"common_ingredients,omitempty"`
	Instructions      *string       `json:"instructions,omitempty"`
	PrepTime          *int          `json:"prep_time,omitempty"`
	Portions          *int          `json:"portions,omitempty"`
	FotoURL           *string       `json:"foto_url,omitempty"`
	VideoURL          *string       `json:"video_url,omitempty"`
}

type ListResponse struct {
	Status  string   `json:"status"`
	Count   int      `json:"count"`
	Recipes []Recipe `json:"recipes"`
}

type RecipeResponse struct {
	Status string `json:"status"`
	Recipe Recipe `json:"recipe"`
}

type MessageResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Normalize trims text fields, drops ingredient rows without a name or a
// positive quantity, and turns blank URLs into nil.
func (r *CreateRecipeRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Category = strings.TrimSpace(r.Category)
	r.Instructions = strings.TrimSpace(r.Instructions)

	kept := make([]Ingredient, 0, len(r.MainIngredients))
	for _, ing := range r.MainIngredients {
		ing.Name = strings.TrimSpace(ing.Name)
		ing.Unit = strings.TrimSpace(ing.Unit)
		if ing.Name != "" && ing.Quantity > 0 {
			kept = append(kept, ing)
		}
	}
	r.MainIngredients = kept

	common := make([]string, 0, len(r.CommonIngredients))
	for _, c := range r.CommonIngredients {
		if c = strings.TrimSpace(c); c != "" {
			common = append(common, c)
		}
	}
	r.CommonIngredients = common

	r.FotoURL = trimURL(r.FotoURL)
	r.VideoURL = trimURL(r.VideoURL)
}

func (r *CreateRecipeRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if len(r.Name) > 200 {
		return fmt.Errorf("name must be at most 200 characters")
	}
	if strings.TrimSpace(r.Category) == "" {
		return fmt.Errorf("category is required")
	}
	if err := validateIngredients(r.MainIngredients); err != nil {
		return err
	}
	if r.PrepTime < 0 {
		return fmt.Errorf("prep_time must be >= 0")
	}
	if r.Portions <= 0 {
		return fmt.Errorf("portions must be > 0")
	}
	return nil
}

func (r *UpdateRecipeRequest) Validate() error {
	if r.Name != nil && strings.TrimSpace(*r.Name) == "" {
		return fmt.Errorf("name must not be empty")
	}
	if r.Category != nil && strings.TrimSpace(*r.Category) == "" {
		return fmt.Errorf("category must not be empty")
	}
	if r.MainIngredients != nil {
		if err := validateIngredients(*r.MainIngredients); err != nil {
			return err
		}
	}
	if r.PrepTime != nil && *r.PrepTime < 0 {
		return fmt.Errorf("prep_time must be >= 0")
	}
	if r.Portions != nil && *r.Portions <= 0 {
		return fmt.Errorf("portions must be > 0")
	}
	return nil
}

// IsEmpty reports whether the update carries no field at all.
func (r *UpdateRecipeRequest) IsEmpty() bool {
	return r.Name == nil && r.Category == nil && r.MainIngredients == nil &&
		r.CommonIngredients == nil && r.Instructions == nil && r.PrepTime == nil &&
		r.Portions == nil && r.FotoURL == nil && r.VideoURL == nil
}

func validateIngredients(list []Ingredient) error {
	if len(list) == 0 {
		return fmt.Errorf("main_ingredients must contain at least one ingredient")
	}
	for i, ing := range list {
		if strings.TrimSpace(ing.Name) == "" {
			return fmt.Errorf("main_ingredients[%d]: name is required", i)
		}
		if ing.Quantity <= 0 {
			return fmt.Errorf("main_ingredients[%d]: quantity must be > 0", i)
		}
	}
	return nil
}

func trimURL(u *string) *string {
	if u == nil {
		return nil
	}
	v := strings.TrimSpace(*u)
	if v == "" {
		return nil
	}
	return &v
}
