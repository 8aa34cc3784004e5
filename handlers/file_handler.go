package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/omarstateECS/ECS-Mobisales-sub001/models"
	"github.com/omarstateECS/ECS-Mobisales-sub001/pkg/apperr"
	"github.com/omarstateECS/ECS-Mobisales-sub001/utils"
)

const uploadDir = "./uploads"

// UploadProductImage stores an image for a product and writes the resulting
// URL onto the product row. Storage goes to GCS when a bucket is configured,
// otherwise to the local uploads directory.
func (h *Handler) UploadProductImage(w http.ResponseWriter, r *http.Request) {
	productID, err := pathID(mux.Vars(r), "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		h.respondError(w, r, apperr.Wrap(apperr.Validation, err, "bad multipart form"))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		h.respondError(w, r, apperr.Wrap(apperr.Validation, err, "missing file field"))
		return
	}
	defer file.Close()

	var p models.Product
	if err := h.DB.First(&p, "product_id = ?", productID).Error; err != nil {
		h.respondError(w, r, apperr.New(apperr.NotFound, "product %d not found", productID))
		return
	}

	filename := fmt.Sprintf("product_%d_%s%s", productID, uuid.NewString(), filepath.Ext(header.Filename))

	var url string
	if bucket := os.Getenv("STORAGE_BUCKET"); bucket != "" && os.Getenv("USE_GCS") == "true" {
		url, err = h.uploadToGCS(r.Context(), bucket, filename, file, header.Header.Get("Content-Type"))
	} else {
		url, err = saveLocal(filename, file)
	}
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	if err := h.DB.Model(&p).Update("image_url", url).Error; err != nil {
		h.respondError(w, r, apperr.Wrap(apperr.Internal, err, "save image url"))
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]string{
		"imageUrl": url,
		"filename": filename,
	})
}

func (h *Handler) uploadToGCS(ctx context.Context, bucket, filename string, src io.Reader, contentType string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	client, err := storage.NewClient(ctx)
	if err != nil {
		return "", apperr.Wrap(apperr.Internal, err, "create storage client")
	}
	defer client.Close()

	object := "products/" + utils.Now().Format("2006/01") + "/" + filename
	writer := client.Bucket(bucket).Object(object).NewWriter(ctx)
	if contentType != "" {
		writer.ContentType = contentType
	}
	if _, err := io.Copy(writer, src); err != nil {
		writer.Close()
		return "", apperr.Wrap(apperr.Internal, err, "upload object")
	}
	if err := writer.Close(); err != nil {
		return "", apperr.Wrap(apperr.Internal, err, "finalize object")
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bucket, object), nil
}

func saveLocal(filename string, src io.Reader) (string, error) {
	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		return "", apperr.Wrap(apperr.Internal, err, "create upload directory")
	}
	dst, err := os.Create(filepath.Join(uploadDir, filename))
	if err != nil {
		return "", apperr.Wrap(apperr.Internal, err, "create file")
	}
	defer dst.Close()
	if _, err := io.Copy(dst, src); err != nil {
		return "", apperr.Wrap(apperr.Internal, err, "save file")
	}
	return "/uploads/" + filename, nil
}
