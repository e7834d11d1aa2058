package questiongen

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/abhisek/jambcoach/internal/llm"
	"github.com/abhisek/jambcoach/internal/logger"
)

// Generator asks the provider for topics and question batches and filters
// the results through the configured validators.
type Generator struct {
	provider llm.Provider
	config   Config
	log      *logger.Logger
}

// NewGenerator creates a Generator.
func NewGenerator(provider llm.Provider, cfg Config, log *logger.Logger) *Generator {
	return &Generator{provider: provider, config: cfg, log: logger.OrNop(log).With("component", "questiongen")}
}

type topicOutput struct {
	Topics []string `json:"topics"`
}

// Topics returns the topics to cover for a subject. When the provider fails
// or answers with nothing usable, the fixed fallback list is returned and
// fallback is true.
func (g *Generator) Topics(ctx context.Context, subj string) (topics []string, fallback bool) {
	ctx = llm.WithPurpose(ctx, llm.PurposeTopics)
	resp, err := g.provider.Generate(ctx, llm.Request{
		Messages:    llm.UserPrompt(topicPrompt(subj, g.config.MinTopics, g.config.MaxTopics)),
		Schema:      TopicSchema(g.config.MinTopics, g.config.MaxTopics),
		MaxTokens:   g.config.TopicMaxTokens,
		Temperature: g.config.Temperature,
	})
	if err != nil {
		g.log.Warn("topic generation failed, using fallback topics", "subject", subj, "error", err)
		return FallbackTopics(subj), true
	}

	var out topicOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		g.log.Warn("topic response unparseable, using fallback topics", "subject", subj, "error", err)
		return FallbackTopics(subj), true
	}

	seen := dedupSet{}
	for _, t := range out.Topics {
		t = strings.TrimSpace(t)
		if t != "" && seen.add(t) {
			topics = append(topics, t)
		}
	}
	if max := g.config.MaxTopics; max > 0 && len(topics) > max {
		topics = topics[:max]
	}
	if len(topics) == 0 {
		return FallbackTopics(subj), true
	}
	return topics, false
}

type batchOutput struct {
	Questions []Candidate `json:"questions"`
}

// Batch is the outcome of one question request.
type Batch struct {
	Accepted []Candidate
	Rejected []*ValidationError
}

// Questions requests n questions on one topic. Candidates failing a
// validator, or repeating a text already in seen, are rejected; accepted
// texts are added to seen. prior is quoted back to the model.
func (g *Generator) Questions(ctx context.Context, subj, topic string, n int, prior []string, seen dedupSet) (Batch, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeQuestions)
	resp, err := g.provider.Generate(ctx, llm.Request{
		System:      systemPrompt,
		Messages:    llm.UserPrompt(questionPrompt(subj, topic, n, prior, g.config.MaxPriorQuestions)),
		Schema:      QuestionBatchSchema,
		MaxTokens:   g.config.QuestionMaxTokens,
		Temperature: g.config.Temperature,
	})
	if err != nil {
		return Batch{}, fmt.Errorf("generate %s/%s questions: %w", subj, topic, err)
	}

	var out batchOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return Batch{}, fmt.Errorf("parse %s/%s questions: %w", subj, topic, err)
	}

	var b Batch
	for i := range out.Questions {
		c := out.Questions[i]
		c.Topic = topic
		c.CorrectAnswer = strings.ToUpper(strings.TrimSpace(c.CorrectAnswer))
		if verr := g.validate(&c); verr != nil {
			b.Rejected = append(b.Rejected, verr)
			continue
		}
		if !seen.add(c.QuestionText) {
			b.Rejected = append(b.Rejected, &ValidationError{Validator: "dedup", Message: "question repeats one already in the set"})
			continue
		}
		b.Accepted = append(b.Accepted, c)
	}
	return b, nil
}

func (g *Generator) validate(c *Candidate) *ValidationError {
	for _, v := range g.config.Validators {
		if verr := v.Validate(c); verr != nil {
			return verr
		}
	}
	return nil
}
