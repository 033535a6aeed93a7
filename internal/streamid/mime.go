package streamid

// MediaType is a 16-bit code identifying a stream's content type. Codes are
// part of the on-disk format — they are embedded in every StreamId — so the
// table below is append-only across versions: existing entries never move
// or change meaning.
type MediaType uint16

// The media-type table. Code 0 is always application/octet-stream, the
// default used when the source extension is unknown. New entries must only
// ever be appended.
const (
	ApplicationOctetStream MediaType = iota
	ApplicationMsword
	ApplicationEpub
	ApplicationGzip
	ApplicationJavaArchive
	ApplicationJSON
	ApplicationPDF
	ApplicationRTF
	ApplicationXHTML
	ApplicationXML
	ApplicationZip
	ApplicationBzip
	ApplicationBzip2
	ApplicationTar

	AudioAAC
	AudioMIDI
	AudioMPEG
	AudioOgg
	AudioOpus
	AudioWAV
	AudioWebm

	FontOTF
	FontTTF
	FontWOFF
	FontWOFF2

	ImageAVIF
	ImageBMP
	ImageGIF
	ImageJPEG
	ImagePNG
	ImageSVG
	ImageTIFF
	ImageWebp

	TextCSS
	TextCSV
	TextHTML
	TextCalendar
	TextJavascript
	TextPlain

	VideoMP4
	VideoMPEG
	VideoOgg
	VideoMP2T
	VideoWebm
	Video3GPP
	Video3GPP2

	ApplicationDash
)

// Category is the high-level grouping of a MediaType.
type Category int

const (
	CategoryApplication Category = iota
	CategoryAudio
	CategoryFont
	CategoryImage
	CategoryText
	CategoryVideo
)

type mimeEntry struct {
	code     MediaType
	category Category
	mime     string
	ext      string
}

var mimeTable = []mimeEntry{
	{ApplicationOctetStream, CategoryApplication, "application/octet-stream", "bin"},
	{ApplicationMsword, CategoryApplication, "application/msword", "doc"},
	{ApplicationEpub, CategoryApplication, "application/epub+zip", "epub"},
	{ApplicationGzip, CategoryApplication, "application/gzip", "gz"},
	{ApplicationJavaArchive, CategoryApplication, "application/java-archive", "jar"},
	{ApplicationJSON, CategoryApplication, "application/json", "json"},
	{ApplicationPDF, CategoryApplication, "application/pdf", "pdf"},
	{ApplicationRTF, CategoryApplication, "application/rtf", "rtf"},
	{ApplicationXHTML, CategoryApplication, "application/xhtml+xml", "xhtml"},
	{ApplicationXML, CategoryApplication, "application/xml", "xml"},
	{ApplicationZip, CategoryApplication, "application/zip", "zip"},
	{ApplicationBzip, CategoryApplication, "application/x-bzip", "bz"},
	{ApplicationBzip2, CategoryApplication, "application/x-bzip2", "bz2"},
	{ApplicationTar, CategoryApplication, "application/x-tar", "tar"},

	{AudioAAC, CategoryAudio, "audio/aac", "aac"},
	{AudioMIDI, CategoryAudio, "audio/midi", "midi"},
	{AudioMPEG, CategoryAudio, "audio/mpeg", "mp3"},
	{AudioOgg, CategoryAudio, "audio/ogg", "oga"},
	{AudioOpus, CategoryAudio, "audio/opus", "opus"},
	{AudioWAV, CategoryAudio, "audio/wav", "wav"},
	{AudioWebm, CategoryAudio, "audio/webm", "weba"},

	{FontOTF, CategoryFont, "font/otf", "otf"},
	{FontTTF, CategoryFont, "font/ttf", "ttf"},
	{FontWOFF, CategoryFont, "font/woff", "woff"},
	{FontWOFF2, CategoryFont, "font/woff2", "woff2"},

	{ImageAVIF, CategoryImage, "image/avif", "avif"},
	{ImageBMP, CategoryImage, "image/bmp", "bmp"},
	{ImageGIF, CategoryImage, "image/gif", "gif"},
	{ImageJPEG, CategoryImage, "image/jpeg", "jpg"},
	{ImagePNG, CategoryImage, "image/png", "png"},
	{ImageSVG, CategoryImage, "image/svg+xml", "svg"},
	{ImageTIFF, CategoryImage, "image/tiff", "tiff"},
	{ImageWebp, CategoryImage, "image/webp", "webp"},

	{TextCSS, CategoryText, "text/css", "css"},
	{TextCSV, CategoryText, "text/csv", "csv"},
	{TextHTML, CategoryText, "text/html", "html"},
	{TextCalendar, CategoryText, "text/calendar", "ics"},
	{TextJavascript, CategoryText, "text/javascript", "js"},
	{TextPlain, CategoryText, "text/plain", "txt"},

	{VideoMP4, CategoryVideo, "video/mp4", "mp4"},
	{VideoMPEG, CategoryVideo, "video/mpeg", "mpeg"},
	{VideoOgg, CategoryVideo, "video/ogg", "ogv"},
	{VideoMP2T, CategoryVideo, "video/mp2t", "ts"},
	{VideoWebm, CategoryVideo, "video/webm", "webm"},
	{Video3GPP, CategoryVideo, "video/3gpp", "3gp"},
	{Video3GPP2, CategoryVideo, "video/3gpp2", "3g2"},

	{ApplicationDash, CategoryApplication, "application/dash+xml", "mpd"},
}

var (
	byCode = func() map[MediaType]mimeEntry {
		m := make(map[MediaType]mimeEntry, len(mimeTable))
		for _, e := range mimeTable {
			m[e.code] = e
		}
		return m
	}()
	byExt = func() map[string]MediaType {
		m := make(map[string]MediaType, len(mimeTable))
		for _, e := range mimeTable {
			m[e.ext] = e.code
		}
		return m
	}()
	byMime = func() map[string]MediaType {
		m := make(map[string]MediaType, len(mimeTable))
		for _, e := range mimeTable {
			m[e.mime] = e.code
		}
		return m
	}()
)

// MediaTypeFromCode looks up a MediaType by its on-disk 16-bit code,
// reporting false for an unrecognized code (FormatError territory for a
// caller parsing a StreamId).
func MediaTypeFromCode(code uint16) (MediaType, bool) {
	_, ok := byCode[MediaType(code)]
	return MediaType(code), ok
}

// FromExtension maps a bare file extension (no leading dot) to a MediaType,
// reporting false when the extension is unknown.
func FromExtension(ext string) (MediaType, bool) {
	mt, ok := byExt[ext]
	return mt, ok
}

// FromMime maps an IANA media type string to a MediaType.
func FromMime(mime string) (MediaType, bool) {
	mt, ok := byMime[mime]
	return mt, ok
}

// Mime returns the IANA media type string for m.
func (m MediaType) Mime() string {
	return byCode[m].mime
}

// Extension returns the canonical file extension for m (no leading dot).
func (m MediaType) Extension() string {
	return byCode[m].ext
}

// Category returns the high-level grouping for m.
func (m MediaType) Category() Category {
	return byCode[m].category
}

func (m MediaType) String() string {
	if e, ok := byCode[m]; ok {
		return e.mime
	}
	return "application/octet-stream"
}
