package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"rapidaid/internal/models"
	"rapidaid/internal/repositories/interfaces"
	"rapidaid/internal/utils"
	"rapidaid/pkg/logger"
	"rapidaid/pkg/storage"
)

type MediaService interface {
	// UploadAmbulanceImage stores a photo of the acting driver's vehicle and
	// records its URL on the driver profile. The image is resized before
	// upload.
	UploadAmbulanceImage(ctx context.Context, actor models.Actor, reader io.Reader, size int64) (string, error)
}

type mediaService struct {
	driverRepo interfaces.DriverRepository
	storage    storage.StorageProvider
	logger     *logger.Logger
}

func NewMediaService(driverRepo interfaces.DriverRepository, storage storage.StorageProvider, logger *logger.Logger) MediaService {
	return &mediaService{
		driverRepo: driverRepo,
		storage:    storage,
		logger:     logger,
	}
}

func (s *mediaService) UploadAmbulanceImage(ctx context.Context, actor models.Actor, reader io.Reader, size int64) (string, error) {
	if actor.IsZero() || actor.Role != models.ActorRoleDriver {
		return "", utils.ErrUnauthenticated
	}
	if size > utils.MaxImageSize {
		return "", errors.New("image too large")
	}

	driver, err := s.driverRepo.GetByID(ctx, actor.ID)
	if err != nil {
		return "", err
	}

	data, err := io.ReadAll(io.LimitReader(reader, utils.MaxImageSize+1))
	if err != nil {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(data)) > utils.MaxImageSize {
		return "", errors.New("image too large")
	}

	resized, format, err := utils.ResizeImage(data, utils.AmbulanceThumbWidth)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("ambulances/%s.%s", driver.ID.Hex(), extensionFor(format))
	resp, err := s.storage.Upload(ctx, &storage.UploadRequest{
		Key:         key,
		Reader:      bytes.NewReader(resized),
		ContentType: "image/" + format,
		Size:        int64(len(resized)),
	})
	if err != nil {
		return "", fmt.Errorf("failed to store image: %w", err)
	}

	if err := s.driverRepo.Update(ctx, driver.ID, map[string]interface{}{
		"ambulance_image_url": resp.URL,
	}); err != nil {
		return "", err
	}

	s.logger.WithActorID(driver.ID).Info("Ambulance image updated")
	return resp.URL, nil
}

func extensionFor(format string) string {
	if format == "png" {
		return "png"
	}
	return "jpg"
}
