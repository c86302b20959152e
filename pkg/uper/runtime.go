package uper

import "strings"

// The bit-buffer runtime emitted alongside the generated codecs. Each
// snippet is keyed by the literal call pattern the selector scans for,
// so only primitives the bodies actually reach end up in the output.
// Once a cursor aborts, its size and position both go negative and
// every later operation is a no-op returning the same error.

const encoderAndDecoderStructs = `struct encoder_t {
    uint8_t *buf_p;
    ssize_t size;
    ssize_t pos;
};

struct decoder_t {
    const uint8_t *buf_p;
    ssize_t size;
    ssize_t pos;
};
`

const encoderInit = `static void encoder_init(struct encoder_t *self_p,
                         uint8_t *buf_p,
                         size_t size)
{
    self_p->buf_p = buf_p;
    self_p->size = (8 * size);
    self_p->pos = 0;
}`

const encoderGetResult = `
static ssize_t encoder_get_result(struct encoder_t *self_p)
{
    if (self_p->size >= 0) {
        return ((self_p->pos + 7) / 8);
    } else {
        return (self_p->pos);
    }
}`

const encoderAbort = `
static void encoder_abort(struct encoder_t *self_p,
                          ssize_t error)
{
    if (self_p->size >= 0) {
        self_p->size = -error;
        self_p->pos = -error;
    }
}`

const encoderAlloc = `
static ssize_t encoder_alloc(struct encoder_t *self_p,
                             size_t size)
{
    ssize_t pos;

    if (self_p->pos + (ssize_t)size <= self_p->size) {
        pos = self_p->pos;
        self_p->pos += size;
    } else {
        pos = -ENOMEM;
        encoder_abort(self_p, ENOMEM);
    }

    return (pos);
}`

const encoderAppendBit = `
static void encoder_append_bit(struct encoder_t *self_p,
                               int value)
{
    ssize_t pos;

    pos = encoder_alloc(self_p, 1);

    if (pos < 0) {
        return;
    }

    if ((pos % 8) == 0) {
        self_p->buf_p[pos / 8] = 0;
    }

    self_p->buf_p[pos / 8] |= (value << (7 - (pos % 8)));
}`

const encoderAppendBits = `
static void encoder_append_bits(struct encoder_t *self_p,
                                const uint8_t *buf_p,
                                size_t number_of_bits)
{
    size_t i;

    for (i = 0; i < number_of_bits; i++) {
        encoder_append_bit(self_p, (buf_p[i / 8] >> (7 - (i % 8))) & 1);
    }
}`

const encoderAppendBytes = `
static void encoder_append_bytes(struct encoder_t *self_p,
                                 const uint8_t *buf_p,
                                 size_t size)
{
    encoder_append_bits(self_p, buf_p, 8 * size);
}`

const encoderAppendUint8 = `
static void encoder_append_uint8(struct encoder_t *self_p,
                                 uint8_t value)
{
    uint8_t buf[1];

    buf[0] = (uint8_t)value;

    encoder_append_bytes(self_p, &buf[0], sizeof(buf));
}`

const encoderAppendUint16 = `
static void encoder_append_uint16(struct encoder_t *self_p,
                                  uint16_t value)
{
    uint8_t buf[2];

    buf[0] = (value >> 8);
    buf[1] = value;

    encoder_append_bytes(self_p, &buf[0], sizeof(buf));
}`

const encoderAppendUint32 = `
static void encoder_append_uint32(struct encoder_t *self_p,
                                  uint32_t value)
{
    uint8_t buf[4];

    buf[0] = (value >> 24);
    buf[1] = (value >> 16);
    buf[2] = (value >> 8);
    buf[3] = value;

    encoder_append_bytes(self_p, &buf[0], sizeof(buf));
}`

const encoderAppendUint64 = `
static void encoder_append_uint64(struct encoder_t *self_p,
                                  uint64_t value)
{
    uint8_t buf[8];

    buf[0] = (value >> 56);
    buf[1] = (value >> 48);
    buf[2] = (value >> 40);
    buf[3] = (value >> 32);
    buf[4] = (value >> 24);
    buf[5] = (value >> 16);
    buf[6] = (value >> 8);
    buf[7] = value;

    encoder_append_bytes(self_p, &buf[0], sizeof(buf));
}`

const encoderAppendInt8 = `
static void encoder_append_int8(struct encoder_t *self_p,
                                int8_t value)
{
    value += 128;
    encoder_append_uint8(self_p, (uint8_t)value);
}`

const encoderAppendInt16 = `
static void encoder_append_int16(struct encoder_t *self_p,
                                 int16_t value)
{
    value += 32768;
    encoder_append_uint16(self_p, (uint16_t)value);
}`

const encoderAppendInt32 = `
static void encoder_append_int32(struct encoder_t *self_p,
                                 int32_t value)
{
    value += 2147483648;
    encoder_append_uint32(self_p, (uint32_t)value);
}`

const encoderAppendInt64 = `
static void encoder_append_int64(struct encoder_t *self_p,
                                 int64_t value)
{
    value += 9223372036854775808ul;
    encoder_append_uint64(self_p, (uint64_t)value);
}`

const encoderAppendBool = `
static void encoder_append_bool(struct encoder_t *self_p, bool value)
{
    encoder_append_bit(self_p, value ? 1 : 0);
}`

const encoderAppendUint = `
static void encoder_append_uint(struct encoder_t *self_p,
                                uint32_t value,
                                uint8_t number_of_bytes)
{
    uint8_t i;

    for (i = number_of_bytes; i > 0; i--) {
        encoder_append_uint8(self_p, (uint8_t)(value >> (8 * (i - 1))));
    }
}`

const encoderAppendLengthDeterminant = `
static void encoder_append_length_determinant(struct encoder_t *self_p,
                                              uint32_t length)
{
    uint8_t number_of_bytes;

    if (length < 256u) {
        number_of_bytes = 1;
    } else if (length < 65536u) {
        number_of_bytes = 2;
    } else if (length < 16777216u) {
        number_of_bytes = 3;
    } else {
        number_of_bytes = 4;
    }

    encoder_append_uint8(self_p, number_of_bytes);
    encoder_append_uint(self_p, length, number_of_bytes);
}`

const encoderAppendNonNegativeBinaryInteger = `
static void encoder_append_non_negative_binary_integer(struct encoder_t *self_p,
                                                       uint64_t value,
                                                       size_t size)
{
    size_t i;

    for (i = 0; i < size; i++) {
        encoder_append_bit(self_p, (value >> (size - i - 1)) & 1);
    }
}`

const decoderInit = `
static void decoder_init(struct decoder_t *self_p,
                         const uint8_t *buf_p,
                         size_t size)
{
    self_p->buf_p = buf_p;
    self_p->size = (8 * size);
    self_p->pos = 0;
}`

const decoderGetResult = `
static ssize_t decoder_get_result(struct decoder_t *self_p)
{
    if (self_p->size >= 0) {
        return ((self_p->pos + 7) / 8);
    } else {
        return (self_p->pos);
    }
}`

const decoderAbort = `
static void decoder_abort(struct decoder_t *self_p,
                          ssize_t error)
{
    if (self_p->size >= 0) {
        self_p->size = -error;
        self_p->pos = -error;
    }
}`

const decoderFree = `
static size_t decoder_free(struct decoder_t *self_p,
                           size_t size)
{
    ssize_t pos;

    if (self_p->pos + (ssize_t)size <= self_p->size) {
        pos = self_p->pos;
        self_p->pos += size;
    } else {
        pos = -EOUTOFDATA;
        decoder_abort(self_p, EOUTOFDATA);
    }

    return (pos);
}`

const decoderReadBit = `
static int decoder_read_bit(struct decoder_t *self_p)
{
    ssize_t pos;
    int value;

    pos = decoder_free(self_p, 1);

    if (pos >= 0) {
        value = ((self_p->buf_p[pos / 8] >> (7 - (pos % 8))) & 1);
    } else {
        value = 0;
    }

    return (value);
}`

const decoderReadBits = `
static void decoder_read_bits(struct decoder_t *self_p,
                              uint8_t *buf_p,
                              size_t number_of_bits)
{
    size_t i;

    memset(buf_p, 0, number_of_bits / 8);

    for (i = 0; i < number_of_bits; i++) {
        buf_p[i / 8] |= (decoder_read_bit(self_p) << (7 - (i % 8)));
    }
}`

const decoderReadBytes = `
static void decoder_read_bytes(struct decoder_t *self_p,
                               uint8_t *buf_p,
                               size_t size)
{
    decoder_read_bits(self_p, buf_p, 8 * size);
}`

const decoderReadUint8 = `
static uint8_t decoder_read_uint8(struct decoder_t *self_p)
{
    uint8_t value;

    decoder_read_bytes(self_p, &value, sizeof(value));

    return (value);
}`

const decoderReadUint16 = `
static uint16_t decoder_read_uint16(struct decoder_t *self_p)
{
    uint8_t buf[2];

    decoder_read_bytes(self_p, &buf[0], sizeof(buf));

    return ((buf[0] << 8) | buf[1]);
}`

const decoderReadUint32 = `
static uint32_t decoder_read_uint32(struct decoder_t *self_p)
{
    uint8_t buf[4];

    decoder_read_bytes(self_p, &buf[0], sizeof(buf));

    return ((buf[0] << 24) | (buf[1] << 16) | (buf[2] << 8) | buf[3]);
}`

const decoderReadUint64 = `
static uint64_t decoder_read_uint64(struct decoder_t *self_p)
{
    uint8_t buf[8];

    decoder_read_bytes(self_p, &buf[0], sizeof(buf));

    return (((uint64_t)buf[0] << 56)
            | ((uint64_t)buf[1] << 48)
            | ((uint64_t)buf[2] << 40)
            | ((uint64_t)buf[3] << 32)
            | ((uint64_t)buf[4] << 24)
            | ((uint64_t)buf[5] << 16)
            | ((uint64_t)buf[6] << 8)
            | (uint64_t)buf[7]);
}`

const decoderReadInt8 = `
static int8_t decoder_read_int8(struct decoder_t *self_p)
{
    int8_t value;

    value = (int8_t)decoder_read_uint8(self_p);
    value -= 128;

    return (value);
}`

const decoderReadInt16 = `
static int16_t decoder_read_int16(struct decoder_t *self_p)
{
    int16_t value;

    value = (int16_t)decoder_read_uint16(self_p);
    value -= 32768;

    return (value);
}`

const decoderReadInt32 = `
static int32_t decoder_read_int32(struct decoder_t *self_p)
{
    int32_t value;

    value = (int32_t)decoder_read_uint32(self_p);
    value -= 2147483648;

    return (value);
}`

const decoderReadInt64 = `
static int64_t decoder_read_int64(struct decoder_t *self_p)
{
    int64_t value;

    value = (int64_t)decoder_read_uint64(self_p);
    value -= 9223372036854775808ul;

    return (value);
}`

const decoderReadBool = `
static bool decoder_read_bool(struct decoder_t *self_p)
{
    return (decoder_read_bit(self_p));
}`

const decoderReadUint = `
static uint32_t decoder_read_uint(struct decoder_t *self_p,
                                  uint8_t number_of_bytes)
{
    uint32_t value;
    uint8_t i;

    value = 0;

    for (i = 0; i < number_of_bytes; i++) {
        value <<= 8;
        value |= (uint32_t)decoder_read_uint8(self_p);
    }

    return (value);
}`

const decoderReadLengthDeterminant = `
static uint32_t decoder_read_length_determinant(struct decoder_t *self_p)
{
    uint8_t number_of_bytes;

    number_of_bytes = decoder_read_uint8(self_p);

    return (decoder_read_uint(self_p, number_of_bytes));
}`

const decoderReadNonNegativeBinaryInteger = `
static uint64_t decoder_read_non_negative_binary_integer(struct decoder_t *self_p,
                                                         size_t size)
{
    size_t i;
    uint64_t value;

    value = 0;

    for (i = 0; i < size; i++) {
        value <<= 1;
        value |= decoder_read_bit(self_p);
    }

    return (value);
}`

type runtimeFunction struct {
	pattern string
	source  string
}

// runtimeCatalogue lists every primitive in emission order. Dependents
// appear after their dependencies so the selected subset concatenates
// into valid C without forward declarations.
var runtimeCatalogue = []runtimeFunction{
	{"encoder_init(", encoderInit},
	{"encoder_get_result(", encoderGetResult},
	{"encoder_abort(", encoderAbort},
	{"encoder_alloc(", encoderAlloc},
	{"encoder_append_bit(", encoderAppendBit},
	{"encoder_append_bits(", encoderAppendBits},
	{"encoder_append_bytes(", encoderAppendBytes},
	{"encoder_append_uint8(", encoderAppendUint8},
	{"encoder_append_uint16(", encoderAppendUint16},
	{"encoder_append_uint32(", encoderAppendUint32},
	{"encoder_append_uint64(", encoderAppendUint64},
	{"encoder_append_int8(", encoderAppendInt8},
	{"encoder_append_int16(", encoderAppendInt16},
	{"encoder_append_int32(", encoderAppendInt32},
	{"encoder_append_int64(", encoderAppendInt64},
	{"encoder_append_bool(", encoderAppendBool},
	{"encoder_append_uint(", encoderAppendUint},
	{"encoder_append_length_determinant(", encoderAppendLengthDeterminant},
	{"encoder_append_non_negative_binary_integer(", encoderAppendNonNegativeBinaryInteger},
	{"decoder_init(", decoderInit},
	{"decoder_get_result(", decoderGetResult},
	{"decoder_abort(", decoderAbort},
	{"decoder_free(", decoderFree},
	{"decoder_read_bit(", decoderReadBit},
	{"decoder_read_bits(", decoderReadBits},
	{"decoder_read_bytes(", decoderReadBytes},
	{"decoder_read_uint8(", decoderReadUint8},
	{"decoder_read_uint16(", decoderReadUint16},
	{"decoder_read_uint32(", decoderReadUint32},
	{"decoder_read_uint64(", decoderReadUint64},
	{"decoder_read_int8(", decoderReadInt8},
	{"decoder_read_int16(", decoderReadInt16},
	{"decoder_read_int32(", decoderReadInt32},
	{"decoder_read_int64(", decoderReadInt64},
	{"decoder_read_bool(", decoderReadBool},
	{"decoder_read_uint(", decoderReadUint},
	{"decoder_read_length_determinant(", decoderReadLengthDeterminant},
	{"decoder_read_non_negative_binary_integer(", decoderReadNonNegativeBinaryInteger},
}

// selectHelpers returns the buffer-state declarations plus the subset
// of runtime primitives reachable from the generated definitions. The
// scan repeats until the selected snippets stop pulling in new entries,
// so helpers that call other helpers stay self-contained. This trims
// output size only; including everything would be equally correct.
func selectHelpers(definitions string) []string {
	selected := make(map[string]bool, len(runtimeCatalogue))

	for {
		grew := false
		for _, fn := range runtimeCatalogue {
			if selected[fn.pattern] {
				continue
			}
			if strings.Contains(definitions, fn.pattern) {
				selected[fn.pattern] = true
				grew = true
				continue
			}
			for _, other := range runtimeCatalogue {
				if selected[other.pattern] && strings.Contains(other.source, fn.pattern) {
					selected[fn.pattern] = true
					grew = true
					break
				}
			}
		}
		if !grew {
			break
		}
	}

	helpers := []string{encoderAndDecoderStructs}
	for _, fn := range runtimeCatalogue {
		if selected[fn.pattern] {
			helpers = append(helpers, fn.source)
		}
	}
	return append(helpers, "")
}
