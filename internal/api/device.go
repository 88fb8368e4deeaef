package api

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/smazurov/blinkd/internal/api/models"
	"github.com/smazurov/blinkd/internal/device"
)

func (s *Server) registerDeviceRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "device-write",
		Method:      http.MethodPost,
		Path:        "/api/device/write",
		Summary:     "Write Command",
		Description: "Write one command to the LED device: start, stop, freq <n>, on or off. " +
			"Unknown commands are logged and reported on the event stream but still succeed.",
		Tags:     []string{"device"},
		Errors:   []int{401, 413, 500, 503},
		Security: withAuth(),
	}, func(_ context.Context, input *models.DeviceWriteRequest) (*models.DeviceWriteResponse, error) {
		n, err := s.device.Write([]byte(input.Body.Command))
		if err != nil {
			return nil, mapDeviceError(err)
		}
		return &models.DeviceWriteResponse{
			Body: models.DeviceWriteData{Written: n},
		}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "device-read",
		Method:      http.MethodGet,
		Path:        "/api/device/read",
		Summary:     "Read Status Text",
		Description: "Read up to length bytes of the status text starting at offset. " +
			"Each call renders a fresh snapshot; an empty body means offset is past the end.",
		Tags:     []string{"device"},
		Errors:   []int{401, 500, 503},
		Security: withAuth(),
	}, func(_ context.Context, input *models.DeviceReadRequest) (*models.DeviceReadResponse, error) {
		buf := make([]byte, input.Length)
		n, err := s.device.ReadAt(buf, input.Offset)
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, mapDeviceError(err)
		}
		return &models.DeviceReadResponse{
			ContentType: "text/plain; charset=utf-8",
			Body:        buf[:n],
		}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "device-status",
		Method:      http.MethodGet,
		Path:        "/api/device/status",
		Summary:     "Device Status",
		Description: "Current blink status, frequency and pin level as JSON",
		Tags:        []string{"device"},
		Errors:      []int{401},
		Security:    withAuth(),
	}, func(_ context.Context, _ *struct{}) (*models.DeviceStatusResponse, error) {
		snap := s.device.Snapshot()
		return &models.DeviceStatusResponse{
			Body: models.DeviceStatusData{
				Status:      snap.Status.String(),
				FrequencyHz: snap.FrequencyHz,
				Level:       snap.Level,
				Backend:     s.device.Backend(),
				Pin:         s.device.Pin(),
			},
		}, nil
	})
}

// mapDeviceError converts device errors to Huma HTTP errors.
func mapDeviceError(err error) error {
	var devErr *device.Error
	if errors.As(err, &devErr) {
		switch devErr.Code {
		case device.ErrCodeResourceExhausted:
			return huma.NewError(http.StatusRequestEntityTooLarge, devErr.Message)
		case device.ErrCodeNotAttached, device.ErrCodeDetached:
			return huma.Error503ServiceUnavailable(devErr.Message)
		default:
			return huma.Error500InternalServerError(devErr.Message, err)
		}
	}
	return huma.Error500InternalServerError(err.Error())
}
