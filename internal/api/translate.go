package api

import (
	"context"
	"io"
	"net/http"

	"github.com/hierovision/hierovision/client/internal/types"
)

// TranslateText converts English text to hieroglyphs. The result shape is
// owned by the server and passed through as a Document.
func TranslateText(ctx context.Context, r Requester, text string) (types.Document, error) {
	if err := types.ValidateFieldPresent(text, "text"); err != nil {
		return nil, err
	}
	var out types.Document
	req := types.TranslateRequest{Text: text}
	if err := call(ctx, r, "/translate/english-to-hieroglyphs", RequestOptions{Method: http.MethodPost, Body: req}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Predict classifies a hieroglyph image.
func Predict(ctx context.Context, r Requester, fileName string, image io.Reader) (*types.UploadResponse, error) {
	return uploadImage(ctx, r, "/predict", fileName, image)
}

// PredictTranslate classifies a hieroglyph image and translates it.
func PredictTranslate(ctx context.Context, r Requester, fileName string, image io.Reader) (*types.UploadResponse, error) {
	return uploadImage(ctx, r, "/predict/translate", fileName, image)
}

func uploadImage(ctx context.Context, r Requester, endpoint, fileName string, image io.Reader) (*types.UploadResponse, error) {
	if err := types.ValidateFieldPresent(fileName, "fileName"); err != nil {
		return nil, err
	}
	return r.Upload(ctx, endpoint, MultipartForm{
		Files: []FilePart{{Field: "file", FileName: fileName, Reader: image}},
	})
}
