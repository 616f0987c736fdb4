package library

import "github.com/ayusman/asana/internal/skeleton"

type kp = skeleton.Keypoint

// pair repeats the same hints for the left and right side of a joint.
func pair(m map[skeleton.Name][]string, left, right skeleton.Name, hints ...string) {
	m[left] = hints
	m[right] = hints
}

var builtin = []Pose{
	{
		ID:           "mountain",
		Name:         "Mountain Pose",
		SanskritName: "Tadasana",
		Difficulty:   1,
		Category:     "Standing",
		Description:  "A foundational standing pose that improves posture and body awareness",
		Adjustments: []string{
			"Stand taller, elongate your spine",
			"Distribute weight evenly through both feet",
			"Engage your core muscles",
			"Relax your shoulders away from your ears",
			"Breathe deeply and steadily",
		},
		Hints: func() map[skeleton.Name][]string {
			m := make(map[skeleton.Name][]string)
			pair(m, skeleton.LeftShoulder, skeleton.RightShoulder, "Lower your shoulders away from your ears", "Keep shoulders back and down")
			pair(m, skeleton.LeftHip, skeleton.RightHip, "Square your hips forward", "Keep your weight evenly distributed")
			pair(m, skeleton.LeftKnee, skeleton.RightKnee, "Straighten your leg without locking the knee", "Engage your quad muscles")
			pair(m, skeleton.LeftAnkle, skeleton.RightAnkle, "Balance your weight evenly through all four corners of your foot", "Lift your arches slightly")
			m[skeleton.Nose] = []string{"Keep your head aligned properly with your spine"}
			return m
		}(),
		Reference: skeleton.New(map[skeleton.Name]skeleton.Keypoint{
			skeleton.Nose:          kp{X: 0.5, Y: 0.2, Confidence: 0.9},
			skeleton.LeftShoulder:  kp{X: 0.4, Y: 0.3, Confidence: 0.9},
			skeleton.RightShoulder: kp{X: 0.6, Y: 0.3, Confidence: 0.9},
			skeleton.LeftElbow:     kp{X: 0.35, Y: 0.4, Confidence: 0.8},
			skeleton.RightElbow:    kp{X: 0.65, Y: 0.4, Confidence: 0.8},
			skeleton.LeftHip:       kp{X: 0.45, Y: 0.6, Confidence: 0.85},
			skeleton.RightHip:      kp{X: 0.55, Y: 0.6, Confidence: 0.85},
			skeleton.LeftKnee:      kp{X: 0.45, Y: 0.75, Confidence: 0.8},
			skeleton.RightKnee:     kp{X: 0.55, Y: 0.75, Confidence: 0.8},
			skeleton.LeftAnkle:     kp{X: 0.45, Y: 0.9, Confidence: 0.75},
			skeleton.RightAnkle:    kp{X: 0.55, Y: 0.9, Confidence: 0.75},
		}),
	},
	{
		ID:           "warrior2",
		Name:         "Warrior II",
		SanskritName: "Virabhadrasana II",
		Difficulty:   2,
		Category:     "Standing",
		Description:  "A pose that builds strength and stamina in the legs while opening the hips",
		Adjustments: []string{
			"Bend your front knee more",
			"Keep your back leg straight",
			"Extend your arms more firmly",
			"Square your hips forward",
			"Keep your stance wide and stable",
		},
		Hints: func() map[skeleton.Name][]string {
			m := make(map[skeleton.Name][]string)
			pair(m, skeleton.LeftShoulder, skeleton.RightShoulder, "Keep your shoulders down and away from your ears", "Engage your shoulder blades")
			pair(m, skeleton.LeftElbow, skeleton.RightElbow, "Extend your arm fully without locking your elbow", "Keep your elbow in line with your shoulder")
			pair(m, skeleton.LeftHip, skeleton.RightHip, "Square your hips forward", "Keep your hips level")
			m[skeleton.LeftKnee] = []string{"Bend your front knee to 90 degrees", "Keep your knee aligned over your ankle"}
			m[skeleton.RightKnee] = []string{"Keep your back leg straight", "Engage your quad muscles"}
			m[skeleton.LeftAnkle] = []string{"Press the outer edge of your back foot firmly into the floor", "Keep your ankle in line with your knee"}
			m[skeleton.RightAnkle] = []string{"Root down through your heel", "Keep your ankle in line with your knee"}
			return m
		}(),
		Reference: skeleton.New(map[skeleton.Name]skeleton.Keypoint{
			skeleton.Nose:          kp{X: 0.5, Y: 0.2, Confidence: 0.9},
			skeleton.LeftShoulder:  kp{X: 0.4, Y: 0.3, Confidence: 0.9},
			skeleton.RightShoulder: kp{X: 0.6, Y: 0.3, Confidence: 0.9},
			skeleton.LeftElbow:     kp{X: 0.3, Y: 0.3, Confidence: 0.8},
			skeleton.RightElbow:    kp{X: 0.7, Y: 0.3, Confidence: 0.8},
			skeleton.LeftWrist:     kp{X: 0.2, Y: 0.3, Confidence: 0.7},
			skeleton.RightWrist:    kp{X: 0.8, Y: 0.3, Confidence: 0.7},
			skeleton.LeftHip:       kp{X: 0.45, Y: 0.6, Confidence: 0.85},
			skeleton.RightHip:      kp{X: 0.55, Y: 0.6, Confidence: 0.85},
			skeleton.LeftKnee:      kp{X: 0.35, Y: 0.75, Confidence: 0.8},
			skeleton.RightKnee:     kp{X: 0.65, Y: 0.65, Confidence: 0.8},
			skeleton.LeftAnkle:     kp{X: 0.25, Y: 0.9, Confidence: 0.75},
			skeleton.RightAnkle:    kp{X: 0.75, Y: 0.9, Confidence: 0.75},
		}),
	},
	{
		ID:           "tree",
		Name:         "Tree Pose",
		SanskritName: "Vrksasana",
		Difficulty:   2,
		Category:     "Balance",
		Description:  "A balancing pose that strengthens the legs and improves focus",
		Adjustments: []string{
			"Focus on a fixed point to improve balance",
			"Press your foot firmly into your inner thigh",
			"Keep your hips level",
			"Engage your standing leg",
			"Bring your hands to heart center if needed for balance",
		},
		Hints: func() map[skeleton.Name][]string {
			m := make(map[skeleton.Name][]string)
			pair(m, skeleton.LeftShoulder, skeleton.RightShoulder, "Keep your shoulders relaxed and away from your ears", "Open your chest")
			pair(m, skeleton.LeftElbow, skeleton.RightElbow, "Keep your elbows soft", "Bring your palms together at your heart center")
			pair(m, skeleton.LeftHip, skeleton.RightHip, "Keep your hips level", "Engage your core to stabilize")
			m[skeleton.LeftKnee] = []string{"Place your foot higher on your inner thigh", "Rotate your knee outward"}
			m[skeleton.RightKnee] = []string{"Engage your standing leg", "Micro-bend your knee to avoid locking"}
			m[skeleton.LeftAnkle] = []string{"Press your foot firmly against your inner thigh", "Flex your foot"}
			m[skeleton.RightAnkle] = []string{"Distribute your weight evenly across your standing foot", "Root down through all four corners of your foot"}
			return m
		}(),
		Reference: skeleton.New(map[skeleton.Name]skeleton.Keypoint{
			skeleton.Nose:          kp{X: 0.5, Y: 0.2, Confidence: 0.9},
			skeleton.LeftShoulder:  kp{X: 0.4, Y: 0.3, Confidence: 0.9},
			skeleton.RightShoulder: kp{X: 0.6, Y: 0.3, Confidence: 0.9},
			skeleton.LeftElbow:     kp{X: 0.3, Y: 0.25, Confidence: 0.8},
			skeleton.RightElbow:    kp{X: 0.7, Y: 0.25, Confidence: 0.8},
			skeleton.LeftWrist:     kp{X: 0.4, Y: 0.15, Confidence: 0.7},
			skeleton.RightWrist:    kp{X: 0.6, Y: 0.15, Confidence: 0.7},
			skeleton.LeftHip:       kp{X: 0.45, Y: 0.6, Confidence: 0.85},
			skeleton.RightHip:      kp{X: 0.55, Y: 0.6, Confidence: 0.85},
			skeleton.LeftKnee:      kp{X: 0.55, Y: 0.5, Confidence: 0.8},
			skeleton.RightKnee:     kp{X: 0.55, Y: 0.75, Confidence: 0.8},
			skeleton.LeftAnkle:     kp{X: 0.55, Y: 0.6, Confidence: 0.7},
			skeleton.RightAnkle:    kp{X: 0.55, Y: 0.9, Confidence: 0.75},
		}),
	},
	{
		ID:           "downdog",
		Name:         "Downward-Facing Dog",
		SanskritName: "Adho Mukha Svanasana",
		Difficulty:   1,
		Category:     "Inversion",
		Description:  "An energizing pose that stretches the hamstrings and strengthens the arms",
		Adjustments: []string{
			"Push the floor away, straighten your arms",
			"Press your heels toward the floor",
			"Keep your head between your arms",
			"Create a straight line from hands to hips",
			"Engage your core to support your spine",
		},
		Hints: func() map[skeleton.Name][]string {
			m := make(map[skeleton.Name][]string)
			pair(m, skeleton.LeftShoulder, skeleton.RightShoulder, "Externally rotate your shoulders", "Push the floor away to create space between shoulders and ears")
			pair(m, skeleton.LeftElbow, skeleton.RightElbow, "Straighten your arms without locking your elbows", "Rotate your elbow creases toward each other")
			pair(m, skeleton.LeftHip, skeleton.RightHip, "Lift your hips high", "Draw your sit bones toward the ceiling")
			pair(m, skeleton.LeftKnee, skeleton.RightKnee, "Straighten your legs", "Engage your quadriceps to lift your kneecaps")
			pair(m, skeleton.LeftAnkle, skeleton.RightAnkle, "Press your heels toward the floor", "Spread your toes wide")
			m[skeleton.Nose] = []string{"Keep your head between your arms"}
			return m
		}(),
		Reference: skeleton.New(map[skeleton.Name]skeleton.Keypoint{
			skeleton.Nose:          kp{X: 0.27, Y: 0.68, Confidence: 0.8},
			skeleton.LeftShoulder:  kp{X: 0.31, Y: 0.58, Confidence: 0.85},
			skeleton.RightShoulder: kp{X: 0.33, Y: 0.6, Confidence: 0.85},
			skeleton.LeftElbow:     kp{X: 0.24, Y: 0.71, Confidence: 0.8},
			skeleton.RightElbow:    kp{X: 0.26, Y: 0.73, Confidence: 0.8},
			skeleton.LeftWrist:     kp{X: 0.16, Y: 0.85, Confidence: 0.75},
			skeleton.RightWrist:    kp{X: 0.18, Y: 0.87, Confidence: 0.75},
			skeleton.LeftHip:       kp{X: 0.5, Y: 0.3, Confidence: 0.85},
			skeleton.RightHip:      kp{X: 0.52, Y: 0.32, Confidence: 0.85},
			skeleton.LeftKnee:      kp{X: 0.64, Y: 0.58, Confidence: 0.8},
			skeleton.RightKnee:     kp{X: 0.66, Y: 0.6, Confidence: 0.8},
			skeleton.LeftAnkle:     kp{X: 0.78, Y: 0.86, Confidence: 0.75},
			skeleton.RightAnkle:    kp{X: 0.8, Y: 0.88, Confidence: 0.75},
		}),
	},
	{
		ID:           "warrior1",
		Name:         "Warrior I",
		SanskritName: "Virabhadrasana I",
		Difficulty:   2,
		Category:     "Standing",
		Description:  "A strengthening pose that opens the chest and stretches the legs",
		Adjustments: []string{
			"Align front knee over ankle",
			"Turn back foot to 45-degree angle",
			"Square hips toward the front",
			"Reach arms overhead with shoulders relaxed",
			"Engage core and lift through the chest",
		},
	},
	{
		ID:           "triangle",
		Name:         "Triangle Pose",
		SanskritName: "Trikonasana",
		Difficulty:   2,
		Category:     "Standing",
		Description:  "A standing pose that stretches the legs and opens the chest",
		Adjustments: []string{
			"Keep both legs straight",
			"Extend through both sides of the waist",
			"Stack shoulders vertically",
			"Gaze upward toward top hand",
			"Keep chest open toward the side",
		},
	},
	{
		ID:           "chair",
		Name:         "Chair Pose",
		SanskritName: "Utkatasana",
		Difficulty:   2,
		Category:     "Standing",
		Description:  "A strengthening pose for the legs that builds heat in the body",
		Adjustments: []string{
			"Bend knees deeply as if sitting in a chair",
			"Keep weight in the heels",
			"Reach arms up by ears",
			"Drop shoulders away from ears",
			"Keep chest lifted and spine long",
		},
	},
	{
		ID:           "bridge",
		Name:         "Bridge Pose",
		SanskritName: "Setu Bandha Sarvangasana",
		Difficulty:   2,
		Category:     "Backbend",
		Description:  "A gentle backbend that opens the chest and strengthens the spine",
		Adjustments: []string{
			"Press firmly into feet with knees hip-width apart",
			"Lift hips toward ceiling",
			"Keep thighs parallel",
			"Interlace fingers beneath you",
			"Roll shoulders under to open chest",
		},
	},
	{
		ID:           "pigeon",
		Name:         "Pigeon Pose",
		SanskritName: "Eka Pada Rajakapotasana",
		Difficulty:   3,
		Category:     "Hip Opener",
		Description:  "A deep hip opener that relieves sciatic pain and opens the glutes",
		Adjustments: []string{
			"Square hips toward the front",
			"Flex front foot to protect knee",
			"Keep back leg extended straight behind you",
			"Walk hands forward for a deeper stretch",
			"Breathe deeply into any tight areas",
		},
	},
	{
		ID:           "crow",
		Name:         "Crow Pose",
		SanskritName: "Bakasana",
		Difficulty:   4,
		Category:     "Arm Balance",
		Description:  "An arm balancing pose that builds core and arm strength",
		Adjustments: []string{
			"Place knees high on upper arms near armpits",
			"Engage core and round upper back",
			"Gaze slightly forward",
			"Lift one foot at a time then both",
			"Keep elbows narrow and hands firmly pressed down",
		},
	},
	{
		ID:           "lotus",
		Name:         "Lotus Pose",
		SanskritName: "Padmasana",
		Difficulty:   4,
		Category:     "Seated",
		Description:  "A seated meditation pose that opens the hips and creates a stable base",
		Adjustments: []string{
			"Start in a comfortable seated position",
			"Place right foot on left thigh",
			"Then left foot on right thigh",
			"Keep spine straight and shoulders relaxed",
			"Only go as far as is comfortable for your knees",
		},
	},
	{
		ID:           "headstand",
		Name:         "Headstand",
		SanskritName: "Sirsasana",
		Difficulty:   5,
		Category:     "Inversion",
		Description:  "An advanced inversion that improves circulation and builds core strength",
		Adjustments: []string{
			"Create a firm base with forearms and interlaced fingers",
			"Place crown of head on mat",
			"Walk feet in toward head before lifting",
			"Engage core and use abdominal strength to lift",
			"Keep legs straight and engage thighs",
		},
	},
}

// genericReference is the upright torso used for poses without a recorded
// reference.
func genericReference() skeleton.Skeleton {
	return skeleton.New(map[skeleton.Name]skeleton.Keypoint{
		skeleton.Nose:          kp{X: 0.5, Y: 0.2, Confidence: 0.9},
		skeleton.LeftShoulder:  kp{X: 0.4, Y: 0.3, Confidence: 0.9},
		skeleton.RightShoulder: kp{X: 0.6, Y: 0.3, Confidence: 0.9},
		skeleton.LeftHip:       kp{X: 0.45, Y: 0.6, Confidence: 0.85},
		skeleton.RightHip:      kp{X: 0.55, Y: 0.6, Confidence: 0.85},
	})
}
