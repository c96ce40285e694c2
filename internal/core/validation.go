package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator"
)

const imageField = "image"

// Draft carries the editable fields of a resource as submitted by a caller.
type Draft struct {
	Name        string `form:"name" json:"name" validate:"required,max=255"`
	Type        string `form:"type" json:"type" validate:"required,max=255"`
	Description string `form:"description" json:"description"`
}

// Upload is an image file submitted together with a draft.
type Upload struct {
	Filename string
	// Size is the size announced by the client; Data may be truncated when it exceeds the limit.
	Size int64
	Data []byte
}

// allowedImageTypes maps accepted MIME types to the extension used for stored blobs.
var allowedImageTypes = []struct {
	mime      string
	extension string
}{
	{"image/jpeg", "jpg"},
	{"image/png", "png"},
	{"image/gif", "gif"},
}

const allowedImageList = "jpeg, png, jpg, gif"

type validatedImage struct {
	contentType string
	extension   string
	data        []byte
}

// normalized trims surrounding whitespace from every field.
func (d Draft) normalized() Draft {
	return Draft{
		Name:        strings.TrimSpace(d.Name),
		Type:        strings.TrimSpace(d.Type),
		Description: strings.TrimSpace(d.Description),
	}
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// validate checks the normalized draft and the optional upload and collects every failed rule.
func (s *CoreService) validate(draft Draft, upload *Upload) (*validatedImage, error) {
	var fields []FieldError

	if err := s.validator.Struct(draft); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			return nil, fmt.Errorf("failed to validate draft: %w", err)
		}
		for _, fe := range validationErrors {
			fields = append(fields, draftFieldError(fe))
		}
	}

	var image *validatedImage
	if upload != nil {
		var uploadFields []FieldError
		image, uploadFields = validateUpload(upload, s.config.Upload.MaxBytes(), s.config.Upload.MaxSizeKB)
		fields = append(fields, uploadFields...)
	}

	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}
	return image, nil
}

func draftFieldError(fe validator.FieldError) FieldError {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return FieldError{Field: field, Rule: "required", Message: fmt.Sprintf("The %s field is required.", field)}
	case "max":
		return FieldError{Field: field, Rule: "max", Message: fmt.Sprintf("The %s field must not be greater than %s characters.", field, fe.Param())}
	default:
		return FieldError{Field: field, Rule: fe.Tag(), Message: fmt.Sprintf("The %s field is invalid.", field)}
	}
}

func validateUpload(upload *Upload, maxBytes int64, maxKB int) (*validatedImage, []FieldError) {
	var fields []FieldError

	detected := mimetype.Detect(upload.Data)
	if !strings.HasPrefix(detected.String(), "image/") {
		fields = append(fields, FieldError{Field: imageField, Rule: "image", Message: "The image field must be an image."})
	}

	extension := ""
	contentType := ""
	for _, allowed := range allowedImageTypes {
		if detected.Is(allowed.mime) {
			extension = allowed.extension
			contentType = allowed.mime
			break
		}
	}
	if extension == "" {
		fields = append(fields, FieldError{
			Field:   imageField,
			Rule:    "mimes",
			Message: fmt.Sprintf("The image field must be a file of type: %s.", allowedImageList),
		})
	}

	if upload.Size > maxBytes || int64(len(upload.Data)) > maxBytes {
		fields = append(fields, FieldError{
			Field:   imageField,
			Rule:    "max_size",
			Message: fmt.Sprintf("The image field must not be greater than %d kilobytes.", maxKB),
		})
	}

	if len(fields) > 0 {
		return nil, fields
	}
	return &validatedImage{contentType: contentType, extension: extension, data: upload.Data}, nil
}
