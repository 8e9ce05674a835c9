package domain

import (
	"encoding/json"
	"fmt"
)

// questionResultEnvelope tags an encoded QuestionResult with its variant so
// cached result trees can be decoded back into concrete types.
type questionResultEnvelope struct {
	Kind   QuestionKind    `json:"kind"`
	Result json.RawMessage `json:"result"`
}

type questionnaireResultJSON struct {
	Questionnaire   Questionnaire             `json:"questionnaire"`
	QuestionResults []questionResultEnvelope `json:"question_results"`
}

// MarshalJSON encodes the question results with their kind tags.
func (r QuestionnaireResult) MarshalJSON() ([]byte, error) {
	out := questionnaireResultJSON{Questionnaire: r.Questionnaire}
	if r.QuestionResults != nil {
		out.QuestionResults = make([]questionResultEnvelope, 0, len(r.QuestionResults))
	}
	for _, result := range r.QuestionResults {
		data, err := json.Marshal(result)
		if err != nil {
			return nil, fmt.Errorf("encode %s result for question %d: %w",
				result.Kind(), result.ResultQuestion().ID, err)
		}
		out.QuestionResults = append(out.QuestionResults, questionResultEnvelope{
			Kind:   result.Kind(),
			Result: data,
		})
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes question results produced by MarshalJSON.
func (r *QuestionnaireResult) UnmarshalJSON(data []byte) error {
	var in questionnaireResultJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	r.Questionnaire = in.Questionnaire
	r.QuestionResults = nil
	if in.QuestionResults != nil {
		r.QuestionResults = make([]QuestionResult, 0, len(in.QuestionResults))
	}
	for i, env := range in.QuestionResults {
		result, err := decodeQuestionResult(env)
		if err != nil {
			return fmt.Errorf("decode question result %d: %w", i, err)
		}
		r.QuestionResults = append(r.QuestionResults, result)
	}
	return nil
}

func decodeQuestionResult(env questionResultEnvelope) (QuestionResult, error) {
	switch env.Kind {
	case KindHeading:
		var res HeadingResult
		if err := json.Unmarshal(env.Result, &res); err != nil {
			return nil, err
		}
		return &res, nil
	case KindText:
		var res TextResult
		if err := json.Unmarshal(env.Result, &res); err != nil {
			return nil, err
		}
		return &res, nil
	case KindRating:
		var res RatingResult
		if err := json.Unmarshal(env.Result, &res); err != nil {
			return nil, err
		}
		return &res, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownQuestionKind, int(env.Kind))
	}
}

// EncodeEvaluationResult serializes a result tree into the opaque blob
// stored in the results cache.
func EncodeEvaluationResult(r *EvaluationResult) ([]byte, error) {
	return json.Marshal(r)
}

// DecodeEvaluationResult restores a result tree encoded with EncodeEvaluationResult.
func DecodeEvaluationResult(data []byte) (*EvaluationResult, error) {
	var r EvaluationResult
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	return &r, nil
}
