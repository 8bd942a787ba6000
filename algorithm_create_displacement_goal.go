package imageanneal

import "github.com/gogpu/imageanneal/internal/shadertext"

// CreateDisplacementGoalAlgorithm runs create_displacement_goal: the
// default or a caller-supplied shader over whichever of
// goal/permutation/image inputs were provided (spec.md §4.4, §4.6).
type CreateDisplacementGoalAlgorithm struct {
	completion
	dispatcher *Dispatcher
	validator  *chainedValidator
	goal       *DisplacementGoal
	image      *LosslessImage
	cfg        shadertext.Config
	result     DisplacementGoal
	drained    bool
}

func (a *CreateDisplacementGoalAlgorithm) Step() (OutputStatus, error) {
	if err := a.guard(); err != nil {
		return 0, err
	}
	if a.goal != nil {
		if err := checkDimensions(a.dispatcher.dims, a.goal.Field.Dimensions); err != nil {
			return 0, a.fail(err)
		}
	}
	if a.image != nil {
		if err := checkDimensions(a.dispatcher.dims, a.image.Dimensions); err != nil {
			return 0, a.fail(err)
		}
	}

	if a.validator != nil {
		done, err := a.validator.step()
		if err != nil {
			return 0, a.fail(err)
		}
		if !done {
			return NoNewOutput, nil
		}
	}

	var goalBytes, permutationBytes, imageBytes []byte
	if a.goal != nil {
		goalBytes = a.goal.Field.EncodeNativeEndian()
	}
	if a.validator != nil {
		permutationBytes = a.validator.result.Field().EncodeNativeEndian()
	}
	if a.image != nil {
		imageBytes = a.image.Pixels
	}

	out, err := a.dispatcher.ops.CreateDisplacementGoal(goalBytes, permutationBytes, imageBytes, a.cfg)
	if err != nil {
		return 0, a.fail(err)
	}
	field, err := DecodeNativeEndian(a.dispatcher.dims, out)
	if err != nil {
		return 0, a.fail(err)
	}
	a.result = DisplacementGoal{Field: field}
	return a.finish(FinalFullOutput), nil
}

// FullOutput drains the computed displacement goal.
func (a *CreateDisplacementGoalAlgorithm) FullOutput() DisplacementGoal {
	if a.drained {
		return DisplacementGoal{}
	}
	a.drained = true
	return a.result
}

func (a *CreateDisplacementGoalAlgorithm) ReturnToDispatcher() *Dispatcher {
	a.dispatcher.release()
	return a.dispatcher
}
