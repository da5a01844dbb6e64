package config

import (
	"encoding/json"
	"net/http"
	"os"

	"go.uber.org/zap"

	"github.com/onestopcentre/cybercrime-api/models"
)

// Config holds the project config values
type Config struct {
	URL          string
	DatabaseName string
	BaseURL      string
	Port         string
	MirrorURL    string
	ChartsDir    string
}

// New sets up all config related services
func New() *Config {

	//setup zap logger and replace default logger
	logger := zap.NewExample()
	defer logger.Sync()
	_ = zap.ReplaceGlobals(logger)

	chartsDir := os.Getenv("CHARTS_DIR")
	if chartsDir == "" {
		chartsDir = "./knime_output"
	}

	return &Config{
		URL:          os.Getenv("DB_URI"),
		DatabaseName: os.Getenv("DB_NAME"),
		BaseURL:      os.Getenv("BASE_URL"),
		Port:         os.Getenv("PORT"),
		MirrorURL:    os.Getenv("MIRROR_URL"),
		ChartsDir:    chartsDir,
	}

}

// ErrorStatus is a useful function that will log, write http headers and body for a
// give message, status code and err
func ErrorStatus(message string, httpStatusCode int, w http.ResponseWriter, err error) {
	zap.S().With(err).Error(message)
	errText := ""
	if err != nil {
		errText = err.Error()
	}
	b, _ := json.Marshal(models.ErrorMessageResponse{
		Response: models.MessageError{Message: message, Error: errText},
	})
	w.WriteHeader(httpStatusCode)
	w.Write(b)
}
