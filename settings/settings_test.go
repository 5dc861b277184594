package settings

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/oomph-ac/springbone/oerror"
	"github.com/oomph-ac/springbone/omath"
	"github.com/oomph-ac/springbone/skeleton"
	"github.com/oomph-ac/springbone/spring"
	"github.com/sirupsen/logrus"
)

const testRig = `
[[bone]]
name = "hips"
translation = [0.0, 0.0, 1.0]

[[bone]]
name = "head"
parent = "hips"
translation = [0.0, 0.0, 0.5]

[[bone]]
name = "hair0"
parent = "head"
translation = [0.1, 0.0, 0.0]
rotation = [0.0, 0.0, 0.0, 2.0]

[[bone]]
name = "hair1"
parent = "hair0"
translation = [0.3, 0.0, 0.0]

[[collider_group]]
name = "head"

  [[collider_group.collider]]
  bone = "head"
  radius = 0.15

  [[collider_group.collider]]
  bone = "head"
  shape = "capsule"
  offset = [0.0, 0.0, 0.1]
  tail = [0.0, 0.0, 0.3]
  radius = 0.05

[[spring]]
name = "hair"
collider_groups = ["head"]

  [[spring.joint]]
  bone = "hair0"
  gravity_power = 0.5
  hit_radius = 0.02

  [[spring.joint]]
  bone = "hair1"
  gravity_dir = [0.0, 0.0, -2.0]
  stiffness = 0.25
  drag_force = 0.1
`

func TestSettingsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toml")
	if err := SaveDefault(path); err != nil {
		t.Fatal(err)
	}
	if err := SaveDefault(path); err == nil {
		t.Fatalf("expected an existing file not to be overwritten")
	}

	s, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if s != DefaultSettings() {
		t.Fatalf("expected the default settings back, got %+v", s)
	}
	if lvl, _ := s.LogLevel(); lvl != logrus.InfoLevel {
		t.Fatalf("unexpected log level %v", lvl)
	}
}

func TestSettingsValidation(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatalf("expected a missing file error")
	}

	path := filepath.Join(t.TempDir(), "settings.toml")
	data := "[Simulation]\nEnabled = true\nFrameRate = 0.0\n\n[Log]\nLevel = \"info\"\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); !errors.Is(err, oerror.ErrInvalidConfig) {
		t.Fatalf("expected a zero frame rate to be rejected, got %v", err)
	}

	s := DefaultSettings()
	s.Log.Level = "loud"
	if err := s.Validate(); !errors.Is(err, oerror.ErrInvalidConfig) {
		t.Fatalf("expected an unknown log level to be rejected, got %v", err)
	}
}

func TestDecodeRig(t *testing.T) {
	sk, rig, err := DecodeRig([]byte(testRig))
	if err != nil {
		t.Fatal(err)
	}
	if sk.Len() != 4 {
		t.Fatalf("expected 4 bones, got %d", sk.Len())
	}
	hair0, ok := sk.Handle("hair0")
	if !ok {
		t.Fatalf("expected hair0")
	}
	if got := sk.Bone(hair0).Rest.Rotation; got != (mgl64.Quat{V: mgl64.Vec3{0, 0, 1}}) {
		t.Fatalf("expected a normalized rotation, got %v", got)
	}
	if got := sk.WorldTransform(hair0).Translation; !omath.ApproxEqual(got, mgl64.Vec3{0.1, 0, 1.5}, 1e-12) {
		t.Fatalf("unexpected hair0 position %v", got)
	}

	g, ok := rig.Groups.Get("head")
	if !ok || len(g.Colliders) != 2 {
		t.Fatalf("expected the head group with 2 colliders")
	}
	if g.Colliders[0].Shape != spring.ShapeSphere || g.Colliders[1].Shape != spring.ShapeCapsule {
		t.Fatalf("unexpected shapes %v %v", g.Colliders[0].Shape, g.Colliders[1].Shape)
	}
	if g.Colliders[1].Tail != (mgl64.Vec3{0, 0, 0.3}) {
		t.Fatalf("unexpected capsule tail %v", g.Colliders[1].Tail)
	}

	joints := rig.Springs[0].Joints
	if joints[0].Stiffness != 1 || joints[0].DragForce != 0.4 || joints[0].GravityDir != spring.DefaultGravityDir {
		t.Fatalf("expected defaults for unset joint values, got %+v", joints[0].JointSettings)
	}
	if joints[1].GravityDir != (mgl64.Vec3{0, 0, -1}) || joints[1].Stiffness != 0.25 {
		t.Fatalf("unexpected joint settings %+v", joints[1].JointSettings)
	}
}

func TestDecodeRigErrors(t *testing.T) {
	cases := map[string]string{
		"parent order": "[[bone]]\nname = \"a\"\nparent = \"b\"\n\n[[bone]]\nname = \"b\"\n",
		"translation":  "[[bone]]\nname = \"a\"\ntranslation = [1.0, 2.0]\n",
		"shape":        "[[collider_group]]\nname = \"g\"\n\n  [[collider_group.collider]]\n  bone = \"a\"\n  shape = \"cube\"\n",
		"stiffness":    "[[spring]]\nname = \"s\"\n\n  [[spring.joint]]\n  bone = \"a\"\n  stiffness = 2.0\n",
		"syntax":       "[[bone\n",
	}
	for name, data := range cases {
		if _, _, err := DecodeRig([]byte(data)); err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}
}

func TestRigRoundTrip(t *testing.T) {
	sk, rig, err := DecodeRig([]byte(testRig))
	if err != nil {
		t.Fatal(err)
	}
	data, err := EncodeRig(sk, rig)
	if err != nil {
		t.Fatal(err)
	}
	sk2, rig2, err := DecodeRig(data)
	if err != nil {
		t.Fatalf("failed decoding encoded rig: %v\n%s", err, data)
	}
	if sk.Fingerprint() != sk2.Fingerprint() {
		t.Fatalf("skeleton changed over a round trip:\n%s", data)
	}
	if rig.Fingerprint() != rig2.Fingerprint() {
		t.Fatalf("rig changed over a round trip:\n%s", data)
	}
	for h := 0; h < sk.Len(); h++ {
		a, b := sk.Bone(skeleton.Handle(h)), sk2.Bone(skeleton.Handle(h))
		if !omath.ApproxEqual(a.Rest.Translation, b.Rest.Translation, 1e-12) || !a.Rest.Rotation.ApproxEqualThreshold(b.Rest.Rotation, 1e-12) {
			t.Fatalf("bone %s rest transform changed over a round trip", a.Name)
		}
	}
}
