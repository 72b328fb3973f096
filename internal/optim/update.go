package optim

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// UpdateRule selects how GradientDescent turns a gradient into a parameter step.
type UpdateRule int

const (
	// UpdateGradientDescent applies param -= lr * gradient.
	UpdateGradientDescent UpdateRule = iota

	// UpdateMomentum keeps a velocity:
	//
	//	velocity = μ * velocity + gradient
	//	param    = param - lr * velocity
	UpdateMomentum

	// UpdateNesterov is momentum with the Nesterov look-ahead correction:
	//
	//	v_new = μ * v - lr * gradient
	//	param = param - μ * v + (1 + μ) * v_new
	UpdateNesterov

	// UpdateAdagrad scales each coordinate by its accumulated squared gradient.
	UpdateAdagrad

	// UpdateRMSProp scales each coordinate by a decaying average of squared gradients
	// (decay rate UpdateParam).
	UpdateRMSProp

	// UpdateAdam uses bias-corrected first and second moment estimates
	// (β1 = UpdateParam, β2 = 0.999).
	UpdateAdam
)

// String returns the rule name.
func (u UpdateRule) String() string {
	switch u {
	case UpdateGradientDescent:
		return "gradient_descent"
	case UpdateMomentum:
		return "momentum"
	case UpdateNesterov:
		return "nesterov"
	case UpdateAdagrad:
		return "adagrad"
	case UpdateRMSProp:
		return "rmsprop"
	case UpdateAdam:
		return "adam"
	default:
		return fmt.Sprintf("UpdateRule(%d)", int(u))
	}
}

// defaultUpdateParam is used when GradientDescentConfig.UpdateParam is zero.
func (u UpdateRule) defaultUpdateParam() float64 {
	switch u {
	case UpdateMomentum, UpdateNesterov, UpdateRMSProp, UpdateAdam:
		return 0.9
	default:
		return 0
	}
}

const (
	adamBeta2 = 0.999
	updateEps = 1e-8
)

// updater applies one rule to a flat parameter vector, holding the per-run
// accumulators (velocity, moments).
type updater struct {
	rule  UpdateRule
	param float64
	t     int       // Timestep for Adam bias correction
	m     []float64 // Velocity / first moment / squared-gradient accumulator
	v     []float64 // Second moment (Adam)
	tmp   []float64
}

func newUpdater(rule UpdateRule, param float64, n int) *updater {
	u := &updater{rule: rule, param: param, tmp: make([]float64, n)}
	switch rule {
	case UpdateGradientDescent:
	case UpdateMomentum, UpdateNesterov, UpdateAdagrad, UpdateRMSProp:
		u.m = make([]float64, n)
	case UpdateAdam:
		u.m = make([]float64, n)
		u.v = make([]float64, n)
	default:
		panic(fmt.Sprintf("optim: unknown update rule %d", int(rule)))
	}
	return u
}

// step updates x in place from gradient g with learning rate lr.
func (u *updater) step(x, g []float64, lr float64) {
	switch u.rule {
	case UpdateGradientDescent:
		floats.AddScaled(x, -lr, g)

	case UpdateMomentum:
		floats.Scale(u.param, u.m)
		floats.Add(u.m, g)
		floats.AddScaled(x, -lr, u.m)

	case UpdateNesterov:
		// tmp holds the previous velocity.
		copy(u.tmp, u.m)
		floats.Scale(u.param, u.m)
		floats.AddScaled(u.m, -lr, g)
		floats.AddScaled(x, -u.param, u.tmp)
		floats.AddScaled(x, 1+u.param, u.m)

	case UpdateAdagrad:
		for i, gi := range g {
			u.m[i] += gi * gi
			x[i] -= lr * gi / (math.Sqrt(u.m[i]) + updateEps)
		}

	case UpdateRMSProp:
		for i, gi := range g {
			u.m[i] = u.param*u.m[i] + (1-u.param)*gi*gi
			x[i] -= lr * gi / (math.Sqrt(u.m[i]) + updateEps)
		}

	case UpdateAdam:
		u.t++
		biasCorrection1 := 1 - math.Pow(u.param, float64(u.t))
		biasCorrection2 := 1 - math.Pow(adamBeta2, float64(u.t))
		for i, gi := range g {
			u.m[i] = u.param*u.m[i] + (1-u.param)*gi
			u.v[i] = adamBeta2*u.v[i] + (1-adamBeta2)*gi*gi
			mHat := u.m[i] / biasCorrection1
			vHat := u.v[i] / biasCorrection2
			x[i] -= lr * mHat / (math.Sqrt(vHat) + updateEps)
		}
	}
}
