package render

const barkVertexShader = `
#version 330
in vec3 vertexPosition;
in vec2 vertexTexCoord;
in vec3 vertexNormal;
in vec4 vertexTangent;

uniform mat4 mvp;

out vec2 fragTexCoord;
out vec3 fragNormal;
out float fragHeight;

void main() {
    fragTexCoord = vertexTexCoord;
    fragNormal = vertexNormal;
    fragHeight = vertexPosition.y;
    gl_Position = mvp * vec4(vertexPosition, 1.0);
}
`

const barkFragmentShader = `
#version 330
in vec2 fragTexCoord;
in vec3 fragNormal;
in float fragHeight;

uniform sampler2D texture0;
uniform vec4 colDiffuse;

out vec4 finalColor;

void main() {
    vec4 texelColor = texture(texture0, fragTexCoord);

    vec3 lightDir = normalize(vec3(0.5, 1.0, 0.3));
    float diff = max(dot(normalize(fragNormal), lightDir), 0.0);
    vec3 light = vec3(0.35) + vec3(0.65) * diff;

    vec4 color = texelColor * colDiffuse;
    color.rgb *= light;
    // Raízes (abaixo do chão) ficam mais escuras
    color.rgb *= fragHeight < 0.0 ? 0.7 : 1.0;
    finalColor = vec4(color.rgb, 1.0);
}
`

// As folhas chegam com os quatro cantos na mesma posição; o quad é aberto
// aqui, virado para a câmera. Tamanho em vertexTangent.x, canto em
// vertexTexCoord e célula do atlas em vertexTexCoord2.
const leafVertexShader = `
#version 330
in vec3 vertexPosition;
in vec2 vertexTexCoord;
in vec2 vertexTexCoord2;
in vec3 vertexNormal;
in vec4 vertexTangent;

uniform mat4 mvp;
uniform mat4 matView;
uniform float time;

out vec2 fragTexCoord;
out vec3 fragNormal;

void main() {
    fragTexCoord = vertexTexCoord2;
    fragNormal = vertexNormal;

    vec3 camRight = vec3(matView[0][0], matView[1][0], matView[2][0]);
    vec3 camUp = vec3(matView[0][1], matView[1][1], matView[2][1]);
    vec2 corner = vertexTexCoord - vec2(0.5);
    float size = vertexTangent.x;

    vec3 pos = vertexPosition + (camRight * corner.x + camUp * corner.y) * size;

    // Vento: balanço horizontal proporcional à altura
    float windStrength = 0.03;
    float move = sin(time * 2.0 + pos.x * 0.5 + pos.z * 0.5) * windStrength * max(pos.y, 0.0);
    pos.x += move;
    pos.z += move * 0.3;

    gl_Position = mvp * vec4(pos, 1.0);
}
`

const leafFragmentShader = `
#version 330
in vec2 fragTexCoord;
in vec3 fragNormal;

uniform sampler2D texture0;
uniform vec4 colDiffuse;

out vec4 finalColor;

void main() {
    vec4 texelColor = texture(texture0, fragTexCoord);
    if (texelColor.a < 0.5) discard;

    vec3 lightDir = normalize(vec3(0.5, 1.0, 0.3));
    float diff = abs(dot(normalize(fragNormal), lightDir));
    vec3 light = vec3(0.45) + vec3(0.55) * diff;

    finalColor = vec4(texelColor.rgb * colDiffuse.rgb * light, 1.0);
}
`
