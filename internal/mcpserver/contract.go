package mcpserver

// FilenameFormatContract describes the canonical capture filename
// convention that LLM consumers should follow when interpreting or
// proposing filenames.
const FilenameFormatContract = `# Astrometa Filename Format Contract

Every canonically named capture file encodes its metadata positionally in
the filename.

## Structure

` + "```" + `
<targetname>_<panel>_<type>_<filter>_<datetime>_<camera>_<exposureseconds>_<gain>_<offset>_<settemp>.<ext>
` + "```" + `

## Rules

1. **Field order is fixed.** Ten fields, joined with ` + "`" + `_` + "`" + `. Decoding is
   positional, so every field slot must be present.
2. **Missing values** are written as the literal token ` + "`" + `NA` + "`" + `.
3. **Dates and datetimes** use ISO-8601 with dashes in place of colons:
   ` + "`" + `2024-01-05T22-13-01` + "`" + `. Decoding restores the canonical colon form.
4. **Frame types** are the canonical uppercase constants: ` + "`" + `LIGHT` + "`" + `,
   ` + "`" + `DARK` + "`" + `, ` + "`" + `FLAT` + "`" + `, ` + "`" + `BIAS` + "`" + ` (and their MASTER variants).
5. **Filters** use the canonical short names: ` + "`" + `Ha` + "`" + `, ` + "`" + `OIII` + "`" + `, ` + "`" + `SII` + "`" + `,
   ` + "`" + `L` + "`" + `, ` + "`" + `R` + "`" + `, ` + "`" + `G` + "`" + `, ` + "`" + `B` + "`" + `, ` + "`" + `UVIR` + "`" + `, ` + "`" + `None` + "`" + `.
6. **Panels** of a mosaic are ` + "`" + `P` + "`" + ` followed by digits (e.g. ` + "`" + `P02` + "`" + `). A
   target name ending in ` + "`" + `-P<digits>` + "`" + ` splits into target and panel.
7. **Extensions** are ` + "`" + `.fits` + "`" + `, ` + "`" + `.xisf` + "`" + `, or ` + "`" + `.cr2` + "`" + `, lowercase.
8. **Values must not contain** the ` + "`" + `_` + "`" + ` delimiter; offending characters
   are rewritten as ` + "`" + `-` + "`" + ` when encoding.

## Example

` + "```" + `
M31_P02_LIGHT_Ha_2024-01-05T22-13-01_ASI2600MM_300_100_50_-10.fits
NA_NA_DARK_NA_2024-01-04T01-00-00_ASI2600MM_300_100_50_-10.fits
` + "```" + `
`
