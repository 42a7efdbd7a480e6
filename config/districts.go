package config

// District represents one administrative subdivision usable with the
// transaction registry. LawdCd is the 5-digit legal-district code.
type District struct {
	Sido    string `json:"sido"`
	Sigungu string `json:"sigungu"`
	LawdCd  string `json:"lawd_cd"`
}

// SupportedDistricts is the built-in district catalog. The public district
// CSV is unreliable, so the major areas ship embedded.
var SupportedDistricts = []District{
	// 서울특별시
	{Sido: "서울특별시", Sigungu: "강남구", LawdCd: "11680"},
	{Sido: "서울특별시", Sigungu: "서초구", LawdCd: "11650"},
	{Sido: "서울특별시", Sigungu: "송파구", LawdCd: "11710"},
	{Sido: "서울특별시", Sigungu: "용산구", LawdCd: "11170"},
	{Sido: "서울특별시", Sigungu: "성동구", LawdCd: "11200"},
	{Sido: "서울특별시", Sigungu: "마포구", LawdCd: "11440"},
	{Sido: "서울특별시", Sigungu: "영등포구", LawdCd: "11560"},
	{Sido: "서울특별시", Sigungu: "종로구", LawdCd: "11110"},
	{Sido: "서울특별시", Sigungu: "중구", LawdCd: "11140"},
	{Sido: "서울특별시", Sigungu: "강동구", LawdCd: "11740"},
	{Sido: "서울특별시", Sigungu: "양천구", LawdCd: "11470"},

	// 경기도
	{Sido: "경기도", Sigungu: "성남시 분당구", LawdCd: "41135"},
	{Sido: "경기도", Sigungu: "성남시 수정구", LawdCd: "41131"},
	{Sido: "경기도", Sigungu: "수원시 영통구", LawdCd: "41117"},
	{Sido: "경기도", Sigungu: "용인시 수지구", LawdCd: "41465"},
	{Sido: "경기도", Sigungu: "고양시 일산동구", LawdCd: "41285"},
	{Sido: "경기도", Sigungu: "화성시", LawdCd: "41590"},
	{Sido: "경기도", Sigungu: "과천시", LawdCd: "41290"},
	{Sido: "경기도", Sigungu: "하남시", LawdCd: "41450"},

	// 주요 광역시
	{Sido: "부산광역시", Sigungu: "해운대구", LawdCd: "26350"},
	{Sido: "부산광역시", Sigungu: "수영구", LawdCd: "26500"},
	{Sido: "대구광역시", Sigungu: "수성구", LawdCd: "27260"},
	{Sido: "인천광역시", Sigungu: "연수구", LawdCd: "28185"},
	{Sido: "세종특별자치시", Sigungu: "세종시", LawdCd: "36110"},
}

// GetSidoNames returns the distinct 시/도 names in catalog order
func GetSidoNames() []string {
	seen := make(map[string]bool)
	var names []string
	for _, d := range SupportedDistricts {
		if !seen[d.Sido] {
			seen[d.Sido] = true
			names = append(names, d.Sido)
		}
	}
	return names
}

// GetDistrictByCode returns the district with the given lawd_cd
func GetDistrictByCode(lawdCd string) *District {
	for _, d := range SupportedDistricts {
		if d.LawdCd == lawdCd {
			return &d
		}
	}
	return nil
}

// GetDistrictsBySido returns all districts within one 시/도
func GetDistrictsBySido(sido string) []District {
	var out []District
	for _, d := range SupportedDistricts {
		if d.Sido == sido {
			out = append(out, d)
		}
	}
	return out
}
