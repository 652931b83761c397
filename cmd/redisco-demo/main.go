// Command redisco-demo exercises the redisco library end to end behind a
// small Gin API: register record types, create records, fetch by id, and
// run equality/range/order/limit queries against them.
package main

import (
	"errors"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/iamteem/redisco"
	"github.com/iamteem/redisco/field"
	"github.com/iamteem/redisco/internal/errtrace"
	"github.com/iamteem/redisco/internal/httpx/jsonx"
	"github.com/iamteem/redisco/internal/httpx/middleware"
	"github.com/iamteem/redisco/model"
)

// registerPerson is the Person model from the source's test fixtures
// (spec.md S1/S2): a name/age/email record with a computed full_name
// equality index.
func registerPerson() *model.Schema {
	s := model.Register("Person")
	s.Field(field.NewStringField("first_name", field.Options{Indexed: true, Required: true}))
	s.Field(field.NewStringField("last_name", field.Options{Indexed: true, Required: true}))
	s.Field(field.NewIntegerField("age", field.Options{Indexed: true}))
	s.Field(field.NewStringField("email", field.Options{Indexed: true}))
	s.Computed("full_name", func(i *model.Instance) string {
		first, _ := i.Get("first_name").(string)
		last, _ := i.Get("last_name").(string)
		return first + " " + last
	})
	return s
}

// registerWordAndCharacter models the source's reverse-reference scenario
// (spec.md S6): Character.word references Word, exposing word.character_set.
func registerWordAndCharacter() (*model.Schema, *model.Schema) {
	word := model.Register("Word")
	word.Field(field.NewStringField("text", field.Options{Indexed: true, Required: true}))

	character := model.Register("Character")
	character.Field(field.NewStringField("glyph", field.Options{Indexed: true, Required: true}))
	character.ReferenceField(field.NewReferenceField("word", "Word", field.ReferenceOptions{Indexed: true, Required: true}))
	return word, character
}

func main() {
	logConfig := zap.NewDevelopmentConfig()
	logConfig.EncoderConfig.TimeKey = ""
	logConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	logConfig.DisableStacktrace = true
	logConfig.DisableCaller = true
	log := zap.Must(logConfig.Build())
	defer log.Sync()
	log = log.Named("main")

	binding.EnableDecoderDisallowUnknownFields = true

	redisco.Connect(redisco.Options{
		Addr: envOr("REDIS_ADDR", "localhost:6379"),
		Log:  log,
	})

	person := registerPerson()
	word, character := registerWordAndCharacter()
	schemas := map[string]*model.Schema{
		person.Name():    person,
		word.Name():      word,
		character.Name(): character,
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	_ = r.SetTrustedProxies([]string{"127.0.0.1"})

	r.Use(gin.Recovery())
	if os.Getenv("ENV") == "dev" {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     []string{"http://localhost:5173"},
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Content-Type", "Authorization"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}
	r.Use(middleware.RequestID())
	r.Use(middleware.ZapLogger(log))

	r.GET("/api/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	r.POST("/api/models/:model", func(c *gin.Context) {
		s, ok := schemas[c.Param("model")]
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"message": "unknown model"})
			return
		}

		var body struct {
			Fields map[string]any `json:"fields"`
		}
		if err := jsonx.ParseJSONObject(c.Request.Body, &body); err != nil {
			_ = c.Error(err)
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}

		inst, err := s.Objects().Create(c.Request.Context(), coerceFields(s, body.Fields))
		if err != nil {
			respondModelError(c, log, err)
			return
		}
		c.JSON(http.StatusCreated, instanceJSON(inst))
	})

	r.GET("/api/models/:model/:id", func(c *gin.Context) {
		s, ok := schemas[c.Param("model")]
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"message": "unknown model"})
			return
		}

		inst, err := s.Objects().GetByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondModelError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, instanceJSON(inst))
	})

	r.GET("/api/models/:model", func(c *gin.Context) {
		s, ok := schemas[c.Param("model")]
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"message": "unknown model"})
			return
		}

		q := s.Objects().All()
		filter := map[string]any{}
		for k, vs := range c.Request.URL.Query() {
			switch k {
			case "order":
				q = q.Order(vs[0])
			case "limit":
				n, _ := strconv.Atoi(vs[0])
				q = q.Limit(0, n)
			default:
				filter[k] = vs[0]
			}
		}
		if len(filter) > 0 {
			q = q.Filter(filter)
		}

		instances, err := q.All(c.Request.Context())
		if err != nil {
			respondModelError(c, log, err)
			return
		}
		out := make([]gin.H, len(instances))
		for i, inst := range instances {
			out[i] = instanceJSON(inst)
		}
		c.Header("X-Total-Count", strconv.Itoa(len(out)))
		c.JSON(http.StatusOK, out)
	})

	r.DELETE("/api/models/:model/:id", func(c *gin.Context) {
		s, ok := schemas[c.Param("model")]
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"message": "unknown model"})
			return
		}

		inst, err := s.Objects().GetByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondModelError(c, log, err)
			return
		}
		if err := inst.Delete(c.Request.Context()); err != nil {
			respondModelError(c, log, err)
			return
		}
		c.Status(http.StatusNoContent)
	})

	addr := envOr("LISTEN_ADDR", ":8080")
	log.Info("listening", zap.String("addr", addr))
	if err := r.Run(addr); err != nil {
		log.Fatal("server exited", zap.Error(err))
	}
}

// coerceFields fixes up the gaps between JSON's type system and the
// field kinds redisco stores: JSON numbers decode to float64 regardless
// of whether the target field is an integer, and dates/datetimes arrive
// as RFC3339 strings.
func coerceFields(s *model.Schema, raw map[string]any) map[string]any {
	out := make(map[string]any, len(raw))
	for k, v := range raw {
		d, ok := s.Attribute(k)
		if !ok {
			out[k] = v
			continue
		}
		switch d.Kind() {
		case field.KindInteger:
			if f, ok := v.(float64); ok {
				v = int64(f)
			}
		case field.KindDateTime, field.KindDate:
			if str, ok := v.(string); ok {
				if t, err := time.Parse(time.RFC3339, str); err == nil {
					v = t
				}
			}
		}
		out[k] = v
	}
	return out
}

func instanceJSON(inst *model.Instance) gin.H {
	return gin.H{"id": inst.ID()}
}

func respondModelError(c *gin.Context, log *zap.Logger, err error) {
	_ = c.Error(err)

	var verr *model.FieldValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
		return
	}
	if errors.Is(err, model.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": err.Error()})
		return
	}
	if errors.Is(err, model.ErrAttributeNotIndexed) {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	var serr *model.StorageError
	if errors.As(err, &serr) {
		errtrace.Log(log, "storage error", err)
	}
	c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
