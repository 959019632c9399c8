package render

import (
	"Arvoredo/shared/util"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// genBarkTexture gera uma textura de casca a partir de ruído Perlin.
func genBarkTexture() rl.Texture2D {
	img := rl.GenImagePerlinNoise(128, 256, 0, 0, 6)
	rl.ImageColorTint(img, rl.NewColor(130, 95, 60, 255))
	tex := rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	rl.GenTextureMipmaps(&tex)
	rl.SetTextureFilter(tex, rl.FilterTrilinear)
	rl.SetTextureWrap(tex, rl.WrapRepeat)
	return tex
}

// genLeafTexture gera o atlas de folhas: uma coluna de células com tufos
// de círculos verdes sobre fundo transparente.
func genLeafTexture(seed int64) rl.Texture2D {
	const cell = 64
	img := rl.GenImageColor(cell*4, cell*4, rl.Blank)
	rng := util.NewRNG(seed)
	for row := 0; row < 4; row++ {
		cy := row*cell + cell/2
		for i := 0; i < 14; i++ {
			x := int32(cell/2 + rng.Symmetric(cell*0.3))
			y := int32(float32(cy) + rng.Symmetric(cell*0.3))
			r := int32(6 + rng.Float32()*8)
			g := uint8(90 + rng.Float32()*80)
			rl.ImageDrawCircle(img, x, y, r, rl.NewColor(40, g, 30, 255))
		}
	}
	tex := rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	rl.SetTextureFilter(tex, rl.FilterBilinear)
	rl.SetTextureWrap(tex, rl.WrapRepeat)
	return tex
}
