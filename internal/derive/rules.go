package derive

import "strings"

// Rule describes one conversion target. The template is a POSIX shell
// command with {source}, {target}, and {frame} placeholders; the toolkit
// does not know or care what tool the template invokes.
type Rule struct {
	// Name is the canonical rule name: lowercase with hyphens, embedded in
	// derivative filenames as the format tag.
	Name string
	// Template is the shell command to run.
	Template string
	// LongRunning extends the execution timeout for conversions known to be
	// CPU or IO bound (the ffmpeg family); everything else gets the short
	// default.
	LongRunning bool
}

// Built-in conversion rules, carried over from the toolkit's converter set.
// The {frame} placeholder selects a page, image index, or time offset where
// the underlying tool supports one.
var builtinRules = []Rule{
	{Name: "df-img-thumb", Template: `convert "{source}[{frame}]" -density 300 -thumbnail 360x360^ -gravity center -extent 360x360 -background white -alpha remove -auto-orient "{target}"`},
	{Name: "df-img-med", Template: `convert "{source}[{frame}]" -density 300 -resize 800x600\> -background white -alpha remove -auto-orient "{target}"`},
	{Name: "df-img-lg", Template: `convert "{source}[{frame}]" -density 300 -resize 1920x1080\> -background white -alpha remove -auto-orient "{target}"`},
	{Name: "pf-tiff", Template: `convert -compress none "{source}[{frame}]" "{target}"`},
	{Name: "pf-wav", Template: `ffmpeg -i "{source}" "{target}"`, LongRunning: true},
	{Name: "df-mp3", Template: `ffmpeg -i "{source}" "{target}"`, LongRunning: true},
	{Name: "df-pdf-doc", Template: `libreoffice --headless --convert-to pdf "{source}"; filename=$(basename -- "{source}"); mv "${filename%.*}.pdf" "{target}"`},
	{Name: "df-pdf-vector", Template: `inkscape "{source}" --export-pdf="{target}"`},
	{Name: "pf-vector", Template: `inkscape "{source}" --export-plain-svg="{target}"`},
	{Name: "df-h264", Template: `ffmpeg -loglevel panic -nostdin -i "{source}" -vcodec libx264 -acodec aac -ab 384K -crf 21 -bf 2 -flags +cgop -pix_fmt yuv420p -movflags faststart "{target}"`, LongRunning: true},
	{Name: "df-h264-concat", Template: `ffmpeg -loglevel panic -nostdin -f concat -segment_time_metadata 1 -i "{source}" -vcodec libx264 -acodec aac -ab 384K -crf 21 -bf 2 -flags +cgop -pix_fmt yuv420p -movflags faststart "{target}"`, LongRunning: true},
	{Name: "df-360p-vp9-400k", Template: `ffmpeg -loglevel panic -nostdin -i "{source}" -codec:v libvpx-vp9 -b:v 400K -crf 31 -speed 4 -tile-columns 6 -frame-parallel 1 -vf scale=-1:360 -f webm "{target}"`, LongRunning: true},
	{Name: "pf-ffv1", Template: `ffmpeg -loglevel panic -nostdin -i "{source}" -vcodec ffv1 -acodec pcm_s16le "{target}"`, LongRunning: true},
	{Name: "df-img-still", Template: `ffmpeg -loglevel panic -nostdin -ss {frame}.0 -i "{source}" -frames:v 1 "{target}"`, LongRunning: true},
	{Name: "df-img-stills", Template: `mkdir "{target}"; ffmpeg -i "{source}" -vf fps=1/6,scale=-1:360 "{target}/%05d.jpg"`, LongRunning: true},
	{Name: "pf-webarc", Template: `wget --input-file="{source}" --convert-links --page-requisites --span-hosts --adjust-extension --restrict-file-names=windows --directory-prefix="{target}"`},
	{Name: "pf-screenshot", Template: `read -r URL < "{source}"; wkhtmltoimage "$URL" "{target}"`},
	{Name: "df-screenshot-cropped", Template: `read -r URL < "{source}"; wkhtmltoimage "$URL" --crop-h 800 --quality 60 "{target}"`},
	{Name: "df-pdf-html", Template: `read -r URL < "{source}"; wkhtmltopdf "$URL" "{target}"`},
	{Name: "df-img-screenshot", Template: `xvfb-run -a -- wkhtmltoimage --crop-h 800 --quality 60 "{source}" "{target}"`},
	{Name: "df-pdf-wkhtml", Template: `xvfb-run -a -- wkhtmltopdf --print-media-type "{source}" "{target}"`},
	{Name: "df-pandoc-html", Template: `pandoc -o "{target}" -t html5 --standalone "{source}"`},
	{Name: "df-docutils-html", Template: `rst2html5 --date --smart-quotes=yes "{source}" "{target}"`},
}

// Rules is a lookup of conversion rules by canonical name.
type Rules struct {
	byName map[string]Rule
}

// DefaultRules returns the built-in rule set.
func DefaultRules() *Rules {
	r := &Rules{byName: make(map[string]Rule, len(builtinRules))}
	for _, rule := range builtinRules {
		r.byName[rule.Name] = rule
	}
	return r
}

// Register adds or replaces a rule. The name is canonicalized first.
func (r *Rules) Register(rule Rule) {
	rule.Name = CanonicalName(rule.Name)
	r.byName[rule.Name] = rule
}

// Lookup resolves a rule by name, accepting uppercase and underscore
// variants (DF_MP3 and df-mp3 are the same rule).
func (r *Rules) Lookup(name string) (Rule, bool) {
	rule, ok := r.byName[CanonicalName(name)]
	return rule, ok
}

// Names returns the canonical names of all registered rules.
func (r *Rules) Names() []string {
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	return names
}

// CanonicalName folds a rule name to its filename form: lowercase with
// hyphens. Rule names never contain a dot; the filename grammar reserves it.
func CanonicalName(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "_", "-")
}

// TargetSpec names one conversion the derive workflow produces for a source
// extension.
type TargetSpec struct {
	Rule string
	Ext  string
}

// defaultTargets maps a source extension to its conversions, in order.
var defaultTargets = map[string][]TargetSpec{
	"html": {{"df-img-screenshot", "png"}},
	"htm":  {{"df-img-screenshot", "png"}},
	"txt":  {{"df-img-screenshot", "png"}, {"df-pandoc-html", "html"}},
	"md":   {{"df-pandoc-html", "html"}},
	"rst":  {{"df-img-screenshot", "png"}, {"df-docutils-html", "html"}},
	"bmp":  {{"df-img-med", "png"}, {"df-img-lg", "png"}},
	"gif":  {{"df-img-med", "png"}, {"df-img-lg", "png"}},
	"jpg":  {{"df-img-med", "png"}, {"df-img-lg", "png"}},
	"jpeg": {{"df-img-med", "png"}, {"df-img-lg", "png"}},
	"png":  {{"df-img-med", "png"}, {"df-img-lg", "png"}},
	"tif":  {{"df-img-med", "png"}, {"df-img-lg", "png"}},
	"tiff": {{"df-img-med", "png"}, {"df-img-lg", "png"}},
	"mp3":  {{"pf-wav", "wav"}, {"df-mp3", "mp3"}},
	"wav":  {{"pf-wav", "wav"}, {"df-mp3", "mp3"}},
	"wma":  {{"pf-wav", "wav"}, {"df-mp3", "mp3"}},
	"ogg":  {{"pf-wav", "wav"}, {"df-mp3", "mp3"}},
	"odt":  {{"df-pdf-doc", "pdf"}},
	"odp":  {{"df-pdf-doc", "pdf"}},
	"doc":  {{"df-pdf-doc", "pdf"}},
	"docx": {{"df-pdf-doc", "pdf"}},
	"ppt":  {{"df-pdf-doc", "pdf"}},
	"pptx": {{"df-pdf-doc", "pdf"}},
	"eps":  {{"pf-vector", "svg"}, {"df-pdf-vector", "pdf"}},
	"svg":  {{"pf-vector", "svg"}, {"df-pdf-vector", "pdf"}},
	"avi":  {{"df-360p-vp9-400k", "webm"}, {"df-h264", "mp4"}},
	"flv":  {{"df-360p-vp9-400k", "webm"}, {"df-h264", "mp4"}},
	"mov":  {{"df-360p-vp9-400k", "webm"}, {"df-h264", "mp4"}},
	"mpeg": {{"df-360p-vp9-400k", "webm"}, {"df-h264", "mp4"}},
	"mp4":  {{"df-360p-vp9-400k", "webm"}, {"df-h264", "mp4"}},
	"webm": {{"df-360p-vp9-400k", "webm"}, {"df-h264", "mp4"}},
	"ogv":  {{"df-360p-vp9-400k", "webm"}, {"df-h264", "mp4"}},
	"urls": {{"df-pdf-html", "pdf"}, {"pf-webarc", "dir"}, {"pf-screenshot", "png"}},
}

// DefaultTargets returns the (rule, extension) pairs the derive workflow
// generates for a source file extension.
func DefaultTargets(ext string) []TargetSpec {
	specs := defaultTargets[strings.ToLower(strings.TrimSpace(ext))]
	return append([]TargetSpec(nil), specs...)
}
