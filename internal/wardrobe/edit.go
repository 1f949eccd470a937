package wardrobe

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator"

	"wardrobe/internal/services"
	"wardrobe/internal/textutil"
)

// Update is the body accepted by PUT /clothes/{id}.
type Update struct {
	Category      Category `json:"category" validate:"required,oneof=top bottom shoes"`
	Name          string   `json:"item" validate:"required,max=100"`
	Styles        []string `json:"style_semantics" validate:"dive,required,max=20"`
	Seasons       []string `json:"season_semantics" validate:"dive,required,max=20"`
	Usages        []string `json:"usage_semantics" validate:"dive,required,max=20"`
	Color         string   `json:"color_semantics" validate:"max=50"`
	Description   string   `json:"description" validate:"max=500"`
	ImageFilename string   `json:"image_filename" validate:"required,max=200"`
}

// EditForm is the editable text view of an item. Tag fields hold comma
// separated lists.
type EditForm struct {
	ID          int64
	Category    string
	Name        string
	Description string
	Color       string
	Styles      string
	Seasons     string
	Usages      string
	ImageURL    string
}

// NewEditForm prepares an item for editing.
func NewEditForm(item Item) EditForm {
	return EditForm{
		ID:          item.ID,
		Category:    string(item.Category),
		Name:        item.Name,
		Description: item.Description,
		Color:       item.Color,
		Styles:      textutil.JoinTags(item.Styles),
		Seasons:     textutil.JoinTags(item.Seasons),
		Usages:      textutil.JoinTags(item.Usages),
		ImageURL:    item.ImageURL,
	}
}

var validate = validator.New()

// Update converts the form back into a request body and validates it.
func (f EditForm) Update() (Update, error) {
	category, err := ParseCategory(f.Category)
	if err != nil {
		return Update{}, err
	}
	update := Update{
		Category:      category,
		Name:          strings.TrimSpace(f.Name),
		Styles:        textutil.SplitTags(f.Styles),
		Seasons:       textutil.SplitTags(f.Seasons),
		Usages:        textutil.SplitTags(f.Usages),
		Color:         strings.TrimSpace(f.Color),
		Description:   strings.TrimSpace(f.Description),
		ImageFilename: textutil.LastSegment(f.ImageURL),
	}
	if err := validate.Struct(update); err != nil {
		return Update{}, services.Wrap(services.ErrValidation, "edit", "validate", describeValidation(err), err)
	}
	return update, nil
}

func describeValidation(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return "invalid item"
	}
	parts := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s failed %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		} else {
			parts = append(parts, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
		}
	}
	return strings.Join(parts, "; ")
}
