package services

import (
	"context"
	"fmt"
	"mime/multipart"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"github.com/duckytan/DotCircle/internal/config"
)

// CloudinaryService gère l'hébergement des images (paquets IMAGE, avatars)
type CloudinaryService struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinaryService(cfg *config.Config) (*CloudinaryService, error) {
	if cfg.CloudinaryCloudName == "" || cfg.CloudinaryAPIKey == "" || cfg.CloudinaryAPISecret == "" {
		return nil, fmt.Errorf("configuration cloudinary manquante")
	}

	cld, err := cloudinary.NewFromParams(
		cfg.CloudinaryCloudName,
		cfg.CloudinaryAPIKey,
		cfg.CloudinaryAPISecret,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}

	return &CloudinaryService{cld: cld}, nil
}

// UploadPackageImage héberge l'image d'un paquet IMAGE. Le fileID fourni par
// le client est une URL temporaire du provider ; on la rapatrie chez nous pour
// qu'elle survive au TTL du provider.
func (s *CloudinaryService) UploadPackageImage(ctx context.Context, fileID, packageID string) (string, error) {
	overwrite := true

	uploadResult, err := s.cld.Upload.Upload(ctx, fileID, uploader.UploadParams{
		PublicID:     fmt.Sprintf("packages/%s", packageID),
		Folder:       "dotcircle/packages",
		Overwrite:    &overwrite,
		ResourceType: "image",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload package image: %w", err)
	}

	return uploadResult.SecureURL, nil
}

// UploadAvatar héberge l'avatar d'un utilisateur
func (s *CloudinaryService) UploadAvatar(ctx context.Context, file multipart.File, userID string) (string, error) {
	overwrite := true

	uploadResult, err := s.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		PublicID:       fmt.Sprintf("avatars/%s", userID),
		Folder:         "dotcircle/avatars",
		Overwrite:      &overwrite, // Écraser l'ancien avatar
		ResourceType:   "image",
		Format:         "jpg",
		Transformation: "c_fill,g_face,h_500,w_500",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to cloudinary: %w", err)
	}

	return uploadResult.SecureURL, nil
}

// DeleteImage supprime une image par son public ID
func (s *CloudinaryService) DeleteImage(ctx context.Context, publicID string) error {
	_, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: "image",
	})
	if err != nil {
		return fmt.Errorf("failed to delete image: %w", err)
	}

	return nil
}
