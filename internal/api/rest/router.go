package rest

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	domain "github.com/oshokin/range-monitor/internal/domain/monitor"
	"github.com/oshokin/range-monitor/internal/metrics"
)

// Service abstracts the topic queries the API depends on.
type Service interface {
	ListTopics() []domain.TopicStatus
	GetTopic(topic string) (domain.TopicStatus, bool)
}

// topicResponse is the JSON view of a topic.
type topicResponse struct {
	Topic      string  `json:"topic"`
	Min        float64 `json:"min"`
	Max        float64 `json:"max"`
	Hysteresis float64 `json:"hysteresis"`
	Status     string  `json:"status"`
}

type handler struct {
	service Service
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(service Service, m *metrics.Metrics) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLoggingMiddleware(m))

	h := &handler{service: service}

	r.GET("/health", h.health)

	if m != nil {
		r.GET("/metrics", gin.WrapH(m.Handler()))
	}

	api := r.Group("/api/v1")
	{
		api.GET("/topics", h.listTopics)
		// Topic names contain slashes, so the whole remainder is the name.
		api.GET("/topics/*topic", h.getTopic)
	}

	return r
}

func (h *handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *handler) listTopics(c *gin.Context) {
	topics := h.service.ListTopics()

	result := make([]topicResponse, 0, len(topics))
	for _, t := range topics {
		result = append(result, toResponse(t))
	}

	c.JSON(http.StatusOK, result)
}

func (h *handler) getTopic(c *gin.Context) {
	name := strings.TrimPrefix(c.Param("topic"), "/")

	topic, ok := h.service.GetTopic(name)
	if name == "" || !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "topic is not monitored"})

		return
	}

	c.JSON(http.StatusOK, toResponse(topic))
}

func toResponse(t domain.TopicStatus) topicResponse {
	return topicResponse{
		Topic:      t.Spec.Topic,
		Min:        t.Spec.Min,
		Max:        t.Spec.Max,
		Hysteresis: t.Spec.Hysteresis,
		Status:     t.Status.String(),
	}
}
