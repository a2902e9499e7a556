package render

// Os nomes de atributos e de mvp/matModel/texture0 são os que o raylib preenche no DrawMesh;
// os uniforms g* vêm dos constant buffers (ver pacote cbuffer).

const standardVertexShader = `
#version 330

in vec3 vertexPosition;
in vec2 vertexTexCoord;
in vec3 vertexNormal;

uniform mat4 mvp;
uniform mat4 matModel;
uniform mat4 gTexTransform;
uniform mat4 gMatTransform;

out vec3 fragPosW;
out vec3 fragNormalW;
out vec2 fragTexC;

void main()
{
    vec4 posW = matModel * vec4(vertexPosition, 1.0);
    fragPosW = posW.xyz;

    // Só há translações: a parte 3x3 preserva a normal.
    fragNormalW = mat3(matModel) * vertexNormal;

    vec4 texC = gTexTransform * vec4(vertexTexCoord, 0.0, 1.0);
    fragTexC = (gMatTransform * texC).xy;

    gl_Position = mvp * vec4(vertexPosition, 1.0);
}
`

const standardFragmentShader = `
#version 330

in vec3 fragPosW;
in vec3 fragNormalW;
in vec2 fragTexC;

uniform sampler2D texture0;

uniform vec4 gDiffuseAlbedo;
uniform vec3 gFresnelR0;
uniform float gRoughness;

uniform vec4 gAmbientLight;
uniform vec3 gEyePosW;
uniform vec3 gLightDirection;
uniform vec3 gLightStrength;

uniform vec4 gFogColor;
uniform float gFogStart;
uniform float gFogRange;

out vec4 finalColor;

vec3 SchlickFresnel(vec3 R0, vec3 normal, vec3 lightVec)
{
    float cosIncidentAngle = clamp(dot(normal, lightVec), 0.0, 1.0);
    float f0 = 1.0 - cosIncidentAngle;
    return R0 + (1.0 - R0) * (f0 * f0 * f0 * f0 * f0);
}

vec3 BlinnPhong(vec3 lightStrength, vec3 lightVec, vec3 normal, vec3 toEye, vec4 albedo)
{
    float shininess = 1.0 - gRoughness;
    float m = shininess * 256.0;
    vec3 halfVec = normalize(toEye + lightVec);

    float roughnessFactor = (m + 8.0) * pow(max(dot(halfVec, normal), 0.0), m) / 8.0;
    vec3 fresnelFactor = SchlickFresnel(gFresnelR0, halfVec, lightVec);

    vec3 specAlbedo = fresnelFactor * roughnessFactor;
    specAlbedo = specAlbedo / (specAlbedo + 1.0);

    return (albedo.rgb + specAlbedo) * lightStrength;
}

void main()
{
    vec4 diffuseAlbedo = texture(texture0, fragTexC) * gDiffuseAlbedo;

#ifdef ALPHA_TEST
    if (diffuseAlbedo.a < 0.1) discard;
#endif

    vec3 normal = normalize(fragNormalW);
    vec3 toEyeW = gEyePosW - fragPosW;
    float distToEye = length(toEyeW);
    toEyeW /= distToEye;

    vec4 ambient = gAmbientLight * diffuseAlbedo;

    vec3 lightVec = -gLightDirection;
    float ndotl = max(dot(lightVec, normal), 0.0);
    vec3 direct = BlinnPhong(gLightStrength * ndotl, lightVec, normal, toEyeW, diffuseAlbedo);

    vec4 litColor = ambient + vec4(direct, 0.0);

#ifdef FOG
    float fogAmount = clamp((distToEye - gFogStart) / gFogRange, 0.0, 1.0);
    litColor = mix(litColor, gFogColor, fogAmount);
#endif

    litColor.a = diffuseAlbedo.a;
    finalColor = litColor;
}
`
