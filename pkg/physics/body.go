// pkg/physics/body.go
package physics

// Kinematic is a shape with a per-tick velocity.
type Kinematic struct {
	*Shape
	Velocity Vector2D
}

// NewKinematic creates a body moving at speed along heading.
func NewKinematic(shape *Shape, speed, heading float64) Kinematic {
	return Kinematic{Shape: shape, Velocity: FromAngle(heading, speed)}
}

// Move advances the shape by one tick of velocity.
func (k *Kinematic) Move() {
	k.Translate(k.Velocity.X, k.Velocity.Y)
}

// Speed returns the velocity magnitude.
func (k *Kinematic) Speed() float64 {
	return k.Velocity.Length()
}

// Heading returns the direction of travel.
func (k *Kinematic) Heading() float64 {
	return k.Velocity.Angle()
}

// SetHeading points the velocity along heading, keeping its magnitude.
func (k *Kinematic) SetHeading(heading float64) {
	k.Velocity = FromAngle(heading, k.Speed())
}

// TurnHeading rotates the direction of travel by delta.
func (k *Kinematic) TurnHeading(delta float64) {
	k.SetHeading(k.Heading() + delta)
}

// Rotating adds a tracked facing angle. Rotation is applied to the outline
// about the shape's pivot and the facing follows it.
type Rotating struct {
	Kinematic
	Facing float64
}

// NewRotating creates a rotating body facing the given angle.
func NewRotating(shape *Shape, speed, heading, facing float64) Rotating {
	return Rotating{Kinematic: NewKinematic(shape, speed, heading), Facing: NormalizeAngle(facing)}
}

// RotateBy turns the body by angle radians.
func (r *Rotating) RotateBy(angle float64) {
	r.Facing = NormalizeAngle(r.Facing + angle)
	r.Rotate(angle)
}

// RotateTowards turns by at most step toward target, measured from the
// first vertex, choosing the shorter arc. Nothing happens inside tolerance.
func (r *Rotating) RotateTowards(target Point, step, tolerance float64) {
	delta := AngleDelta(r.Facing, r.Vertex(0).AngleTo(target))
	switch {
	case delta > tolerance:
		r.RotateBy(step)
	case delta < -tolerance:
		r.RotateBy(-step)
	}
}

// Powered adds thrust along the facing and multiplicative drag.
type Powered struct {
	Rotating
	Thrust float64
	Drag   float64
}

// NewPowered creates a stationary powered body. drag must be in [0, 1).
func NewPowered(shape *Shape, facing, thrust, drag float64) Powered {
	return Powered{
		Rotating: NewRotating(shape, 0, facing, facing),
		Thrust:   thrust,
		Drag:     drag,
	}
}

// ApplyThrust adds one tick of thrust along the facing.
func (p *Powered) ApplyThrust() {
	p.Velocity = p.Velocity.Add(FromAngle(p.Facing, p.Thrust))
}

// Move advances one tick and then applies drag.
func (p *Powered) Move() {
	p.Kinematic.Move()
	p.Velocity = p.Velocity.Scale(1 - p.Drag)
}
