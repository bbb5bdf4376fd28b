package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"secondchance/internal/feature/sentiment"
	"secondchance/internal/transport/http/ez"
	mdw "secondchance/internal/transport/http/middleware"
)

type SentimentHandler struct {
	analyzer *sentiment.Analyzer
	log      *zap.Logger
}

func NewSentimentHandler(a *sentiment.Analyzer, log *zap.Logger) *SentimentHandler {
	return &SentimentHandler{analyzer: a, log: log}
}

type sentimentIn struct {
	Sentence string `json:"sentence"`
}

// Mount 挂载 POST /sentiment
func (h *SentimentHandler) Mount(g *gin.RouterGroup) {
	e := ez.New(g, h.log,
		ez.WithFault(func(c *gin.Context) {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Error performing sentiment analysis"})
		}),
		ez.WithErrorMap(MapError),
	)

	ez.RegisterAction(e, ez.Action[sentimentIn, sentiment.Result]{
		Method:    http.MethodPost,
		Path:      "/sentiment",
		Binder:    ez.BindJSON,
		BindError: "No sentence provided",
		Handler: func(c *gin.Context, in *sentimentIn) (sentiment.Result, error) {
			res, err := h.analyzer.Score(in.Sentence)
			if err != nil {
				h.log.Error("no sentence provided")
				return sentiment.Result{}, err
			}
			mdw.ObserveSentiment(res.Label)
			h.log.Info("sentiment analysis result",
				zap.Float64("score", res.Score),
				zap.String("sentiment", res.Label),
			)
			return res, nil
		},
	})
}
