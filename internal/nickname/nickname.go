// Package nickname generates throwaway display names of the form
// "<adjective> <MBTI> <animal>" for anonymous participants.
package nickname

import (
	"fmt"
	"math/rand/v2"
)

var adjectives = []string{
	"활발한",
	"사랑스러운",
	"귀여운",
	"건들거리는",
	"자신감 넘치는",
	"놀란",
	"피곤한",
	"수다스러운",
	"조용한",
	"친절한",
}

var animals = []string{
	"고양이",
	"범고래",
	"토끼",
	"호랑이",
	"강아지",
	"하마",
	"펭귄",
	"비둘기",
	"원숭이",
	"거북이",
	"사자",
	"북극곰",
}

var mbtiTypes = buildMBTITypes()

func buildMBTITypes() []string {
	var out []string
	for _, a := range "IE" {
		for _, b := range "NS" {
			for _, c := range "FT" {
				for _, d := range "PJ" {
					out = append(out, string(a)+string(b)+string(c)+string(d))
				}
			}
		}
	}
	return out
}

func Generate() string {
	return fmt.Sprintf("%s %s %s",
		adjectives[rand.IntN(len(adjectives))],
		mbtiTypes[rand.IntN(len(mbtiTypes))],
		animals[rand.IntN(len(animals))],
	)
}
