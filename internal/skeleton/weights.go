package skeleton

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultWeight applies to keypoints missing from the weight table.
const DefaultWeight = 1.0

// weights reflects how much each keypoint matters for pose correctness.
var weights = map[Name]float64{
	Nose:          0.5,
	LeftShoulder:  1.0,
	RightShoulder: 1.0,
	LeftElbow:     1.0,
	RightElbow:    1.0,
	LeftWrist:     0.8,
	RightWrist:    0.8,
	LeftHip:       1.2,
	RightHip:      1.2,
	LeftKnee:      1.0,
	RightKnee:     1.0,
	LeftAnkle:     0.8,
	RightAnkle:    0.8,
}

// Weight returns the scoring weight for n.
func Weight(n Name) float64 {
	if w, ok := weights[n]; ok {
		return w
	}
	return DefaultWeight
}

// JointAngle names the three keypoints whose middle joint forms an angle.
type JointAngle struct {
	Name     string
	Proximal Name
	Middle   Name
	Distal   Name
}

// JointAngles are the limb angles compared in addition to positions.
var JointAngles = []JointAngle{
	{Name: "rightArm", Proximal: RightShoulder, Middle: RightElbow, Distal: RightWrist},
	{Name: "leftArm", Proximal: LeftShoulder, Middle: LeftElbow, Distal: LeftWrist},
	{Name: "rightLeg", Proximal: RightHip, Middle: RightKnee, Distal: RightAnkle},
	{Name: "leftLeg", Proximal: LeftHip, Middle: LeftKnee, Distal: LeftAnkle},
}

var friendlyOverrides = map[Name]string{
	Nose: "Head Position",
}

// FriendlyName returns a display label such as "Left Shoulder" for n.
func FriendlyName(n Name) string {
	if label, ok := friendlyOverrides[n]; ok {
		return label
	}
	var b strings.Builder
	for i, r := range string(n) {
		if i > 0 && unicode.IsUpper(r) {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return cases.Title(language.Und).String(b.String())
}
