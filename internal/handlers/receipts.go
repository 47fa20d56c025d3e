package handlers

import (
	"context"
	"errors"
	"io"
	"mime"
	"net/http"
	"path"
	"strings"

	"freelance-crm/internal/apperrors"
	"freelance-crm/internal/models"
	"freelance-crm/internal/receipts"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const receiptField = "receipt"

var (
	errReceiptsDisabled = apperrors.Unavailable("receipt storage is not configured")
	errMissingReceipt   = apperrors.Validation("receipt file is required")
)

// storeReceipt uploads data as the receipt of expense id and removes the file
// it replaces. The new file is removed again if the expense cannot be updated.
func (h *Handlers) storeReceipt(ctx context.Context, userID, id int64, filename string, data io.Reader) (*models.Expense, error) {
	if h.receipts == nil {
		return nil, errReceiptsDisabled
	}
	if _, err := h.db.GetExpense(ctx, userID, id); err != nil {
		return nil, err
	}
	file, err := receipts.Sniff(data, h.receiptBytes)
	if err != nil {
		return nil, err
	}
	// The stored name carries the sniffed extension, never the client's.
	filename = strings.TrimSuffix(path.Base(filename), path.Ext(filename))
	if filename == "" || filename == "." || filename == "/" {
		filename = receiptField
	}
	filename += file.Extension
	key, err := h.receipts.Upload(ctx, uuid.New(), filename, file.Reader())
	if err != nil {
		return nil, err
	}
	previous, err := h.db.SetExpenseReceipt(ctx, userID, id, key)
	if err != nil {
		h.dropReceipt(ctx, key)
		return nil, err
	}
	if previous != nil && *previous != key {
		h.dropReceipt(ctx, *previous)
	}
	h.log.Info("receipt stored",
		zap.Int64("user_id", userID),
		zap.Int64("expense_id", id),
		zap.String("mime", file.MIME),
		zap.Int("bytes", len(file.Data)),
	)
	return h.db.GetExpense(ctx, userID, id)
}

// dropReceipt deletes a stored file. Failures only leave an orphan behind.
func (h *Handlers) dropReceipt(ctx context.Context, key string) {
	if h.receipts == nil || key == "" {
		return
	}
	if err := h.receipts.Delete(ctx, key); err != nil {
		h.log.Warn("failed to delete receipt", zap.String("key", key), zap.Error(err))
	}
}

// uploadedReceipt returns the receipt part of a multipart form, or nil when
// none was attached.
func uploadedReceipt(r *http.Request) (io.ReadCloser, string, error) {
	f, header, err := r.FormFile(receiptField)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", apperrors.Validationf("invalid receipt upload: %v", err)
	}
	if header.Size == 0 {
		f.Close()
		return nil, "", nil
	}
	return f, header.Filename, nil
}

// parseUpload parses a form that may carry a receipt, capping the body size.
func (h *Handlers) parseUpload(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, h.receiptBytes+maxJSONBody)
	if err := r.ParseMultipartForm(h.receiptBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return apperrors.Validationf("invalid form submission: %v", err)
	}
	return nil
}

// serveReceipt streams the receipt of expense id back to its owner.
func (h *Handlers) serveReceipt(w http.ResponseWriter, r *http.Request) error {
	if h.receipts == nil {
		return errReceiptsDisabled
	}
	id, err := pathID(r, "id")
	if err != nil {
		return err
	}
	expense, err := h.db.GetExpense(r.Context(), GetUserFromContext(r).ID, id)
	if err != nil {
		return err
	}
	if expense.Receipt == nil {
		return apperrors.NotFound("expense has no receipt")
	}
	rc, err := h.receipts.Open(r.Context(), *expense.Receipt)
	if err != nil {
		return err
	}
	defer rc.Close()

	contentType := mime.TypeByExtension(path.Ext(*expense.Receipt))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("inline", map[string]string{"filename": path.Base(*expense.Receipt)}))
	w.Header().Set("X-Content-Type-Options", "nosniff")
	if _, err := io.Copy(w, rc); err != nil {
		h.log.Warn("receipt download interrupted", zap.Int64("expense_id", id), zap.Error(err))
	}
	return nil
}
