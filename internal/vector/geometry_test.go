/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

import (
	"math"
	"testing"
)

func TestRectContainsAndInset(t *testing.T) {
	r := R(10, 20, 100, 50)
	if !r.Contains(Pt{10, 20}) || !r.Contains(Pt{110, 70}) {
		t.Fatalf("expected edge points to be contained")
	}
	in := r.Inset(5, 5)
	if in.X != 15 || in.Y != 25 || in.W != 90 || in.H != 40 {
		t.Fatalf("unexpected inset: %+v", in)
	}
}

func TestAffineBasic(t *testing.T) {
	m := Translate(10, 5).Mul(Scale(2, 3))
	p := m.Apply(Pt{1, 1})
	if p.X != 12 || p.Y != 8 { // (1*2+10, 1*3+5)
		t.Fatalf("unexpected transform result: %+v", p)
	}
	back := m.Invert().Apply(p)
	if math.Abs(back.X-1) > 1e-12 || math.Abs(back.Y-1) > 1e-12 {
		t.Fatalf("inverse did not restore point: %+v", back)
	}
}

func TestBBoxOfCorners(t *testing.T) {
	r := R(-10, -5, 20, 10)
	c := r.Corners()
	b := BBox(c[:]...)
	if b != r {
		t.Fatalf("bbox of corners should equal rect: %+v", b)
	}
	if (BBox() != Rect{}) {
		t.Fatalf("empty bbox should be zero rect")
	}
}

func TestRotateAboutKeepsPivot(t *testing.T) {
	m := RotateAbout(-90, 40, 30)
	p := m.Apply(Pt{40, 30})
	if math.Abs(p.X-40) > 1e-9 || math.Abs(p.Y-30) > 1e-9 {
		t.Fatalf("pivot moved: %+v", p)
	}
	q := m.Apply(Pt{50, 30})
	if math.Abs(q.X-40) > 1e-9 || math.Abs(q.Y-20) > 1e-9 {
		t.Fatalf("unexpected rotated point: %+v", q)
	}
}

func TestMakeTranslate(t *testing.T) {
	if s := MakeTranslate(0, 0); s != "" {
		t.Fatalf("zero translate should be empty, got %q", s)
	}
	if s := MakeTranslate(12, 0.5); s != "translate(12,0.5)" {
		t.Fatalf("unexpected translate: %q", s)
	}
	if s := MakeRotate(-90, 5, 6); s != "rotate(-90,5,6)" {
		t.Fatalf("unexpected rotate: %q", s)
	}
}
