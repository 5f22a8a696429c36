package formalize

import (
	"fmt"
	"strings"
)

// formalizeSystemPrompt instructs the model to turn spoken Mongolian meeting
// transcript into formal protocol language. The rules and examples mirror the
// failure modes the quality gate checks for.
const formalizeSystemPrompt = `Та Монгол улсын албан ёсны протокол бичдэг мэргэжилтэн.

ТАНЫ ҮҮРЭГ: Ярианы бичлэгийг АЛБАН ЁСНЫ ПРОТОКОЛ болгох

ЗААВАЛ ДАГАХ 5 ДҮРЭМ:

1. ХЭЛЛЭГ ҮГСИЙГ БҮРЭН АРИЛГА:
   Хэрэглэхгүй: аа, ээ, өө, шүү, дээ, л байх, байхаа, за, тэгээд, гээд
   Тэднийг бүрэн УСТГА

2. ЯРИАНЫ МАЯГИЙГ АЛБАН ХЭЛ БОЛГО:
   "Би хийнэ шүү дээ" -> "[Нэр] хариуцан гүйцэтгэнэ"
   "хэллээ" -> "дэвшүүлэв" эсвэл "илэрхийлэв"
   "болно" -> "болох" эсвэл "болов"

3. НЭР, ОГНОО, ТОО - ЯАЖ БАЙ ХАДГАЛ:
   Анна -> А.Анна эсвэл Анна (өөрчлөхгүй)
   даваа гараг -> даваа гараг (өөрчлөхгүй)

4. ТОДОРХОЙ ӨГҮҮЛБЭР:
   "За тэгээд бид үргэлжлүүлье" -> "Хэлэлцүүлгийг үргэлжлүүлэв"

5. ЗӨВХӨН МОНГОЛ ХЭЛ:
   Англи хэл рүү ОРЧУУЛАХГҮЙ
   Нэмэлт тайлбар БИЧИХГҮЙ

ЖИШЭЭ:

Өмнө: "Анна: Би энэ ажлыг даваа гарагт хийх болно шүү дээ."
Дараа: "А.Анна даваа гарагт ажлыг хариуцан гүйцэтгэх болов."

Өмнө: "За тэгээд бид үргэлжлүүлье шүү."
Дараа: "Хэлэлцүүлгийг үргэлжлүүлэв."

Өмнө: "Тогтоол: Ирэх долоо хоногт дуусгах."
Дараа: "ТОГТСОН: Ирэх долоо хоногт ажлыг дуусгахаар тогтов."

АНХААР:
- Зөвхөн протокол бич
- Тайлбар бичихгүй
- "Based on..." гэх мэт англи хэл БАЙХГҮЙ`

// buildUserPrompt wraps one normalized chunk in the generation instruction.
func buildUserPrompt(chunk string) string {
	return fmt.Sprintf(`Энэ хурлын ярианы бичлэгийг АЛБАН ЁСНЫ ПРОТОКОЛ болго.

АНХНЫ БИЧЛЭГ:
%s

ЧУХАЛ: Зөвхөн албан ёсны протокол бич. Нэмэлт тайлбар, англи үг БАЙХГҮЙ.`, chunk)
}

// correctiveInstruction turns the first attempt's violations into an
// addendum for the retry prompt. It is a pure function of the violation
// list: each rejecting kind contributes one directive, preservation kinds a
// reminder. Returns "" for an empty list.
func correctiveInstruction(violations []Violation) string {
	if len(violations) == 0 {
		return ""
	}

	seen := map[ViolationKind]bool{}
	var directives []string
	add := func(k ViolationKind, d string) {
		if !seen[k] {
			seen[k] = true
			directives = append(directives, "- "+d)
		}
	}

	for _, v := range violations {
		switch v.Kind {
		case KindTooShort, KindLengthRatio:
			add(v.Kind, "Анхны бичлэгийн агуулгыг БҮРЭН хамруул, хэт богино эсвэл хэт урт бичихгүй")
		case KindResidualFiller:
			add(v.Kind, "Хэллэг үгс (шүү дээ, л байх даа) БҮРЭН АРИЛГА!")
		case KindForeignScript:
			add(v.Kind, "ЗӨВХӨН монгол хэлээр бич, англи үг ХЭРЭГЛЭХГҮЙ")
		case KindInformalPattern:
			add(v.Kind, "Ярианы маягийг албан хэл болго (\"би хийнэ\" -> \"хариуцан гүйцэтгэнэ\")")
		case KindNameNotPreserved:
			add(v.Kind, "Нэрсийг яг байгаагаар нь ХАДГАЛ")
		case KindDateNotPreserved:
			add(v.Kind, "Огноо, гарагийг яг байгаагаар нь ХАДГАЛ")
		case KindNonsenseToken:
			add(v.Kind, "Утгагүй үг, давталт БИЧИХГҮЙ")
		}
	}

	return "АНХААРУУЛГА: дараах алдааг засаарай:\n" + strings.Join(directives, "\n")
}
