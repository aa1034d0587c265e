package httpapi

import (
	"errors"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/solarwatch/panel-insights/internal/prediction"
	"github.com/solarwatch/panel-insights/internal/store"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app.
//
// The prediction endpoints never return 5xx for a well-formed request: the
// façade always produces a usable result and communicates degraded
// confidence through the result's source field.
func RegisterRoutes(app *fiber.App, svc *prediction.Service, st *store.MemoryStore) {
	v1 := app.Group("/api/v1")

	v1.Post("/predict/efficiency", func(c *fiber.Ctx) error {
		var req efficiencyRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		res := svc.PredictEfficiency(c.Context(), req.Sample(), req.Orientation)
		return c.JSON(res)
	})

	v1.Post("/predict/degradation", func(c *fiber.Ctx) error {
		var req prediction.StressFactors
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		res := svc.PredictDegradation(c.Context(), req)
		return c.JSON(res)
	})

	v1.Post("/optimize/tilt", func(c *fiber.Ctx) error {
		var req tiltRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		cond, sweep := req.toConditions()
		res := svc.OptimizeTilt(c.Context(), cond, sweep)
		return c.JSON(res)
	})

	v1.Post("/classify", func(c *fiber.Ctx) error {
		var req classifyRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		res := svc.ClassifyImage(c.Context(), req.toInput())
		return c.JSON(res)
	})

	v1.Post("/classify/batch", func(c *fiber.Ctx) error {
		var req batchClassifyRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		inputs := make([]prediction.ImageInput, 0, len(req.Images))
		for _, img := range req.Images {
			inputs = append(inputs, img.toInput())
		}

		results := svc.ClassifyImageBatch(c.Context(), inputs)
		return c.JSON(fiber.Map{
			"count":       len(results),
			"predictions": results,
		})
	})

	v1.Get("/panels/:id/latest", func(c *fiber.Ctx) error {
		snapshot, err := st.GetLatest(c.Params("id"))
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no snapshots for requested panel")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch panel snapshot")
		}
		return c.JSON(snapshot)
	})

	v1.Get("/panels/:id/history", func(c *fiber.Ctx) error {
		var req historyQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		snapshots, err := st.GetRange(c.Params("id"), req.From, req.To)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no snapshots for requested range")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch panel history")
		}

		return c.JSON(fiber.Map{
			"panelId":   c.Params("id"),
			"from":      req.From,
			"to":        req.To,
			"snapshots": snapshots,
		})
	})
}

// efficiencyRequest carries one environment sample and an optional panel
// orientation. Out-of-physical-range numerics are clamped by the core, not
// rejected here; only unparseable bodies are a 400.
type efficiencyRequest struct {
	TemperatureC     float64                      `json:"temperatureC"`
	HumidityPct      float64                      `json:"humidityPct"`
	WindSpeedMs      float64                      `json:"windSpeedMs"`
	IrradianceWm2    float64                      `json:"irradianceWm2"`
	VoltageV         float64                      `json:"voltageV"`
	CurrentA         float64                      `json:"currentA"`
	DaysSinceInstall int                          `json:"daysSinceInstall"`
	CloudCoverPct    float64                      `json:"cloudCoverPct"`
	SoilingPct       float64                      `json:"soilingPct"`
	Orientation      *prediction.PanelOrientation `json:"orientation"`
}

func (r efficiencyRequest) Sample() prediction.EnvironmentSample {
	return prediction.EnvironmentSample{
		TemperatureC:     r.TemperatureC,
		HumidityPct:      r.HumidityPct,
		WindSpeedMs:      r.WindSpeedMs,
		IrradianceWm2:    r.IrradianceWm2,
		VoltageV:         r.VoltageV,
		CurrentA:         r.CurrentA,
		DaysSinceInstall: r.DaysSinceInstall,
		CloudCoverPct:    r.CloudCoverPct,
		SoilingPct:       r.SoilingPct,
	}
}

// tiltRequest holds the inputs for a tilt sweep. DayOfYear defaults to the
// current UTC day when omitted.
type tiltRequest struct {
	LatitudeDeg  float64  `json:"latitudeDeg" validate:"gte=-90,lte=90"`
	GhiWm2       float64  `json:"ghiWm2" validate:"gte=0"`
	HourOfDay    float64  `json:"hourOfDay" validate:"gte=0,lt=24"`
	DayOfYear    int      `json:"dayOfYear" validate:"gte=0,lte=366"`
	TemperatureC float64  `json:"temperatureC"`
	TiltMinDeg   *float64 `json:"tiltMinDeg"`
	TiltMaxDeg   *float64 `json:"tiltMaxDeg"`
	TiltStepDeg  *float64 `json:"tiltStepDeg"`
}

func (r tiltRequest) toConditions() (prediction.TiltConditions, prediction.TiltSweep) {
	day := r.DayOfYear
	if day == 0 {
		day = time.Now().UTC().YearDay()
	}

	cond := prediction.TiltConditions{
		GhiWm2:       r.GhiWm2,
		LatitudeDeg:  r.LatitudeDeg,
		HourOfDay:    r.HourOfDay,
		DayOfYear:    day,
		TemperatureC: r.TemperatureC,
	}

	sweep := prediction.TiltSweep{
		MinDeg:  prediction.DefaultTiltMinDeg,
		MaxDeg:  prediction.DefaultTiltMaxDeg,
		StepDeg: prediction.DefaultTiltStepDeg,
	}
	if r.TiltMinDeg != nil {
		sweep.MinDeg = *r.TiltMinDeg
	}
	if r.TiltMaxDeg != nil {
		sweep.MaxDeg = *r.TiltMaxDeg
	}
	if r.TiltStepDeg != nil {
		sweep.StepDeg = *r.TiltStepDeg
	}
	return cond, sweep
}

type classifyRequest struct {
	ID       string `json:"id"`
	FileName string `json:"fileName" validate:"required"`
	Data     []byte `json:"data"`
}

func (r classifyRequest) toInput() prediction.ImageInput {
	return prediction.ImageInput{ID: r.ID, FileName: r.FileName, Data: r.Data}
}

type batchClassifyRequest struct {
	Images []classifyRequest `json:"images" validate:"required,min=1,dive"`
}

// historyQuery holds query parameters for the history endpoint.
type historyQuery struct {
	From time.Time `validate:"required"`
	To   time.Time `validate:"required,gtefield=From"`
}

func (h *historyQuery) bind(c *fiber.Ctx) error {
	fromStr := c.Query("from")
	toStr := c.Query("to")
	if fromStr == "" || toStr == "" {
		return errors.New("from and to query parameters are required")
	}

	from, err := parseTime(fromStr)
	if err != nil {
		return err
	}
	to, err := parseTime(toStr)
	if err != nil {
		return err
	}

	h.From = from
	h.To = to
	return nil
}

// parseTime tries to parse either RFC3339 or Unix seconds.
func parseTime(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}
	return time.Time{}, errors.New("invalid time format; use RFC3339 or unix seconds")
}
