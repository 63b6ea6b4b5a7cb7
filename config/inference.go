package config

import "time"

// InferenceConfig selects the multimodal model behind page solving.
// Provider is "vertex" (Gemini on Vertex AI) or "ollama".
type InferenceConfig struct {
	Provider        string        `yaml:"provider"`
	Model           string        `yaml:"model"`
	ProjectID       string        `yaml:"projectID"`
	Region          string        `yaml:"region"`
	Endpoint        string        `yaml:"endpoint"`
	Timeout         time.Duration `yaml:"timeout"`
	PageDelay       time.Duration `yaml:"pageDelay"`
	Temperature     float32       `yaml:"temperature"`
	TopP            float32       `yaml:"topP"`
	TopK            int           `yaml:"topK"`
	MaxOutputTokens int           `yaml:"maxOutputTokens"`
}

func defaultInference() InferenceConfig {
	return InferenceConfig{
		Provider:        "vertex",
		Model:           "gemini-2.5-flash",
		Region:          "us-central1",
		Timeout:         2 * time.Minute,
		PageDelay:       time.Second,
		Temperature:     0.2,
		TopP:            0.95,
		TopK:            40,
		MaxOutputTokens: 8192,
	}
}

func (i *InferenceConfig) applyEnv() error {
	setString(&i.Provider, "INFERENCE_PROVIDER")
	setString(&i.Model, "INFERENCE_MODEL")
	setString(&i.ProjectID, "GOOGLE_CLOUD_PROJECT")
	setString(&i.Region, "VERTEX_AI_REGION")
	setString(&i.Endpoint, "OLLAMA_ENDPOINT")
	if err := setDuration(&i.Timeout, "INFERENCE_TIMEOUT"); err != nil {
		return err
	}
	if err := setDuration(&i.PageDelay, "INFERENCE_PAGE_DELAY"); err != nil {
		return err
	}
	if err := setInt(&i.TopK, "INFERENCE_TOP_K"); err != nil {
		return err
	}
	if err := setInt(&i.MaxOutputTokens, "INFERENCE_MAX_OUTPUT_TOKENS"); err != nil {
		return err
	}
	if err := setFloat32(&i.TopP, "INFERENCE_TOP_P"); err != nil {
		return err
	}
	return setFloat32(&i.Temperature, "INFERENCE_TEMPERATURE")
}
