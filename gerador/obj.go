package main

import (
	"bufio"
	"fmt"
	"io"

	"Arvoredo/shared/meshing"
)

// writeOBJ exporta a geometria de triângulos no formato Wavefront OBJ.
// Malhas de linhas não têm faces e são recusadas.
func writeOBJ(w io.Writer, name string, g *meshing.Geometry) error {
	if g == nil || g.Mode != meshing.Triangles {
		return fmt.Errorf("geometria sem triângulos")
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# Arvoredo\no %s\n", name)

	n := g.VertexCount()
	for i := 0; i < n; i++ {
		fmt.Fprintf(bw, "v %g %g %g\n", g.Vertices[i*3], g.Vertices[i*3+1], g.Vertices[i*3+2])
	}
	hasNormals := len(g.Normals) == n*3
	if hasNormals {
		for i := 0; i < n; i++ {
			fmt.Fprintf(bw, "vn %g %g %g\n", g.Normals[i*3], g.Normals[i*3+1], g.Normals[i*3+2])
		}
	}
	hasUVs := len(g.UVs) == n*2
	if hasUVs {
		for i := 0; i < n; i++ {
			fmt.Fprintf(bw, "vt %g %g\n", g.UVs[i*2], g.UVs[i*2+1])
		}
	}

	for t := 0; t+2 < g.IndexCount(); t += 3 {
		bw.WriteString("f")
		for k := 0; k < 3; k++ {
			idx := g.Index(t+k) + 1
			switch {
			case hasNormals && hasUVs:
				fmt.Fprintf(bw, " %d/%d/%d", idx, idx, idx)
			case hasNormals:
				fmt.Fprintf(bw, " %d//%d", idx, idx)
			case hasUVs:
				fmt.Fprintf(bw, " %d/%d", idx, idx)
			default:
				fmt.Fprintf(bw, " %d", idx)
			}
		}
		bw.WriteString("\n")
	}
	return bw.Flush()
}
