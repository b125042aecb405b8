package directory

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"strconv"

	"github.com/supportportal/portal-client/internal/models"
)

// FormField is one text field of a multipart submission
type FormField struct {
	Name  string
	Value string
}

// ImageFile is an optional profile image attached to a submission
type ImageFile struct {
	Name    string
	Content []byte
}

// UserForm is the multipart payload for the create/update endpoints
type UserForm struct {
	Fields []FormField
	Image  *ImageFile
}

func (f *UserForm) add(name, value string) {
	f.Fields = append(f.Fields, FormField{Name: name, Value: value})
}

// Field returns the value of the named text field and whether it is present
func (f *UserForm) Field(name string) (string, bool) {
	for _, field := range f.Fields {
		if field.Name == name {
			return field.Value, true
		}
	}
	return "", false
}

// BuildUserForm constructs the multipart payload for a create or update
// submission. currentUsername is the correlation key identifying the record
// being updated; it is omitted entirely for creation. A nil image becomes
// the text field "null", which is how the original browser client serialized
// a missing file and what the backend expects.
func BuildUserForm(currentUsername string, user *models.User, image *ImageFile) *UserForm {
	form := &UserForm{}

	if currentUsername != "" {
		form.add("currentUsername", currentUsername)
	}
	form.add("firstName", user.FirstName)
	form.add("lastName", user.LastName)
	form.add("username", user.Username)
	form.add("email", user.Email)
	form.add("role", string(user.Role))
	form.add("isActive", strconv.FormatBool(user.Active))
	form.add("isNotLocked", strconv.FormatBool(user.NotLocked))

	if image == nil {
		form.add("profileImage", "null")
	} else {
		form.Image = image
	}
	return form
}

// BuildProfileImageForm constructs the minimal two-field payload for the
// profile image endpoint
func BuildProfileImageForm(username string, image *ImageFile) *UserForm {
	form := &UserForm{Image: image}
	form.add("username", username)
	return form
}

// Encode serializes the form to a multipart body, returning the body and
// its Content-Type
func (f *UserForm) Encode() ([]byte, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for _, field := range f.Fields {
		if err := writer.WriteField(field.Name, field.Value); err != nil {
			return nil, "", fmt.Errorf("failed to write form field %q: %w", field.Name, err)
		}
	}

	if f.Image != nil {
		part, err := writer.CreateFormFile("profileImage", f.Image.Name)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create image part: %w", err)
		}
		if _, err := part.Write(f.Image.Content); err != nil {
			return nil, "", fmt.Errorf("failed to write image content: %w", err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finalize form: %w", err)
	}
	return buf.Bytes(), writer.FormDataContentType(), nil
}
