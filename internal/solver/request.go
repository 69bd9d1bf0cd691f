package solver

import (
	"encoding/base64"
	"mime"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
)

const DefaultPrompt = "Solve the problems within the image:"

type TextRequest struct {
	Question string `validate:"required"`
}

type ImageRequest struct {
	Data     []byte `validate:"gt=0"`
	MimeType string `validate:"required"`
	Filename string
}

func newTextRequest(v *validator.Validate, question string) (TextRequest, error) {
	req := TextRequest{Question: strings.TrimSpace(question)}
	if err := v.Struct(req); err != nil {
		return TextRequest{}, ErrEmptyQuestion
	}
	return req, nil
}

func newImageRequest(v *validator.Validate, data []byte, mimeType, filename string) (ImageRequest, error) {
	if len(data) == 0 {
		return ImageRequest{}, ErrNoFile
	}

	req := ImageRequest{
		Data:     data,
		MimeType: DetectMimeType(data, mimeType),
		Filename: filename,
	}
	if err := v.Struct(req); err != nil {
		return ImageRequest{}, ErrNoFile
	}
	return req, nil
}

// DetectMimeType keeps a declared type unless it is missing or the generic
// octet-stream, in which case the bytes are sniffed. Parameters are dropped.
func DetectMimeType(data []byte, declared string) string {
	declared = strings.TrimSpace(declared)
	if declared != "" {
		if mt, _, err := mime.ParseMediaType(declared); err == nil {
			declared = mt
		}
	}
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}

	mt, _, err := mime.ParseMediaType(mimetype.Detect(data).String())
	if err != nil {
		return "application/octet-stream"
	}
	return mt
}

func DataURI(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
