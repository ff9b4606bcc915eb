package common

import (
	"cinco/src/config"
	"cinco/src/lib"
	"cinco/src/models"
	"cinco/src/utils"
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/yeqown/go-qrcode"
	"gorm.io/gorm"
)

const MEMBER_QR_SEQUENCE = "member_qr"

type IssuedCode struct {
	Sequence uint
	Plain    string
	Hashed   string
	Image    string
	path     string
	remote   bool
}

// seedMemberQRSequence starts the counter after the highest code ever issued,
// soft-deleted members included.
func seedMemberQRSequence(tx *gorm.DB) (uint, error) {
	var highest uint
	err := tx.
		Unscoped().
		Model(&models.Member{}).
		Select("COALESCE(MAX(qr_sequence), 0)").
		Scan(&highest).
		Error
	return highest, err
}

// IssueMemberCodes reserves n consecutive QR numbers inside tx and renders one
// image per number. Images written before a failure are removed; once the
// caller's transaction fails it should call RemoveIssuedCodes.
func IssueMemberCodes(ctx context.Context, tx *gorm.DB, n int) ([]IssuedCode, error) {
	if n <= 0 {
		return nil, nil
	}
	first, err := models.ReserveSequence(tx, MEMBER_QR_SEQUENCE, uint(n), seedMemberQRSequence)
	if err != nil {
		return nil, err
	}
	dir := config.QRCodeDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("could not create qr directory: %w", err)
	}
	prefix := config.QRCodePrefix()
	store := lib.GetAssetStore()
	codes := make([]IssuedCode, 0, n)
	for i := 0; i < n; i++ {
		seq := first + uint(i)
		code, err := renderCode(ctx, store, dir, prefix, seq)
		if code != nil {
			codes = append(codes, *code)
		}
		if err != nil {
			RemoveIssuedCodes(codes)
			return nil, err
		}
	}
	return codes, nil
}

func renderCode(ctx context.Context, store lib.AssetStore, dir, prefix string, seq uint) (*IssuedCode, error) {
	plain := utils.FormatCode(prefix, seq)
	hashed, err := utils.HashCode(plain)
	if err != nil {
		return nil, err
	}
	image := plain + ".png"
	code := &IssuedCode{
		Sequence: seq,
		Plain:    plain,
		Hashed:   hashed,
		Image:    image,
		path:     filepath.Join(dir, image),
	}
	qrc, err := qrcode.New(hashed, qrcode.WithBuiltinImageEncoder(qrcode.PNG_FORMAT), qrcode.WithQRWidth(10))
	if err != nil {
		return nil, err
	}
	if err := qrc.Save(code.path); err != nil {
		log.Printf("Could not save qrcode to file [%s]: %s\n", code.path, err.Error())
		return nil, err
	}
	if store != nil {
		if _, err := store.PutAsset(ctx, image, code.path, "image/png"); err != nil {
			log.Printf("Error uploading asset to %s: %s\n", store.Name(), err.Error())
			return code, err
		}
		code.remote = true
	}
	return code, nil
}

// RemoveIssuedCodes deletes the image files (and uploaded copies) of codes
// whose members were never committed.
func RemoveIssuedCodes(codes []IssuedCode) {
	store := lib.GetAssetStore()
	for _, c := range codes {
		if err := os.Remove(c.path); err != nil && !os.IsNotExist(err) {
			log.Printf("[QR] Could not remove %s: %s\n", c.path, err.Error())
		}
		if c.remote && store != nil {
			if err := store.DeleteAsset(context.Background(), c.Image); err != nil {
				log.Printf("[QR] Could not remove %s from %s: %s\n", c.Image, store.Name(), err.Error())
			}
		}
	}
}
