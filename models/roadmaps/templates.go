package roadmaps

import (
	"strings"

	"github.com/google/uuid"
)

// RoadmapTemplate: готовый план под популярный стек. Не хранится в базе,
// клонирование создает обычный персональный роадмап.
type RoadmapTemplate struct {
	ID             string           `json:"id"`
	Title          string           `json:"title"`
	Description    string           `json:"description"`
	Category       string           `json:"category"`
	Difficulty     string           `json:"difficulty"`
	EstimatedWeeks int              `json:"estimated_weeks"`
	Modules        []TemplateModule `json:"modules"`
}

// TemplateModule: модуль шаблона, Weeks — сколько недель на него отведено
type TemplateModule struct {
	Title     string             `json:"title"`
	Skills    []string           `json:"skills"`
	Weeks     int                `json:"weeks"`
	Resources []TemplateResource `json:"resources"`
}

type TemplateResource struct {
	Title   string `json:"title"`
	Type    string `json:"type"`
	URL     string `json:"url"`
	Minutes int    `json:"estimated_minutes"`
}

// Templates: каталог шаблонов, опционально по категории
func Templates(category string) []RoadmapTemplate {
	if category == "" {
		return builtinTemplates
	}
	var out []RoadmapTemplate
	for _, t := range builtinTemplates {
		if strings.EqualFold(t.Category, category) {
			out = append(out, t)
		}
	}
	return out
}

// TemplateByID: шаблон по слагу
func TemplateByID(id string) (*RoadmapTemplate, bool) {
	for i := range builtinTemplates {
		if builtinTemplates[i].ID == id {
			return &builtinTemplates[i], true
		}
	}
	return nil, false
}

// Instantiate: разворачивает шаблон в персональный роадмап со свежим
// прогрессом. Недели модулей идут подряд, навыки модулей попадают в
// снимок SkillGaps.
func (t *RoadmapTemplate) Instantiate(userID uint) *Roadmap {
	week := 1
	var mods []Module
	var gaps []SkillGap
	seen := make(map[string]bool)

	for _, tm := range t.Modules {
		weeks := tm.Weeks
		if weeks < 1 {
			weeks = 1
		}

		var res []LearningResource
		budget := 0.0
		for _, tr := range tm.Resources {
			hours := float64(tr.Minutes) / 60
			budget += hours
			res = append(res, LearningResource{
				ID:             uuid.NewString(),
				Title:          tr.Title,
				URL:            tr.URL,
				Type:           tr.Type,
				EstimatedHours: hours,
			})
		}

		mods = append(mods, Module{
			ID:            uuid.NewString(),
			Title:         tm.Title,
			SkillsCovered: tm.Skills,
			WeekNumber:    week,
			AllottedWeeks: weeks,
			BudgetHours:   budget,
			Resources:     res,
		})
		week += weeks

		for _, s := range tm.Skills {
			key := strings.ToLower(s)
			if !seen[key] {
				seen[key] = true
				gaps = append(gaps, SkillGap{Skill: s, Weight: 3})
			}
		}
	}

	rm := &Roadmap{
		UserID:        userID,
		Title:         t.Title,
		Active:        true,
		SkillGaps:     gaps,
		Modules:       mods,
		DeadlineWeeks: t.EstimatedWeeks,
	}
	rm.InitializeStatuses()
	return rm
}

var builtinTemplates = []RoadmapTemplate{
	{
		ID:             "aws-cloud-practitioner",
		Title:          "AWS Cloud Practitioner",
		Description:    "Master Amazon Web Services fundamentals and get AWS Certified Cloud Practitioner certified",
		Category:       "cloud",
		Difficulty:     "beginner",
		EstimatedWeeks: 8,
		Modules: []TemplateModule{
			{
				Title: "Cloud Computing Fundamentals", Skills: []string{"AWS"}, Weeks: 1,
				Resources: []TemplateResource{
					{Title: "What is Cloud Computing?", Type: "video", URL: "https://www.youtube.com/watch?v=dH0yz-Osy54", Minutes: 15},
					{Title: "AWS Cloud Practitioner Introduction", Type: "video", URL: "https://www.youtube.com/watch?v=3hLmDS179YE", Minutes: 120},
					{Title: "AWS Free Tier Setup", Type: "article", URL: "https://aws.amazon.com/free/", Minutes: 30},
				},
			},
			{
				Title: "AWS Core Services", Skills: []string{"AWS"}, Weeks: 1,
				Resources: []TemplateResource{
					{Title: "AWS EC2 Tutorial", Type: "video", URL: "https://www.youtube.com/watch?v=iHX-jtKIVNA", Minutes: 45},
					{Title: "AWS S3 Complete Guide", Type: "video", URL: "https://www.youtube.com/watch?v=tfU0JEZjcsg", Minutes: 60},
					{Title: "Practice: Launch Your First EC2 Instance", Type: "practice", URL: "https://aws.amazon.com/getting-started/hands-on/launch-a-virtual-machine/", Minutes: 45},
				},
			},
			{
				Title: "Networking & Security", Skills: []string{"AWS", "Networking"}, Weeks: 1,
				Resources: []TemplateResource{
					{Title: "AWS VPC Explained", Type: "video", URL: "https://www.youtube.com/watch?v=bGDMeD6kOz0", Minutes: 40},
					{Title: "AWS IAM Tutorial", Type: "video", URL: "https://www.youtube.com/watch?v=iF9fs8Rw4Uo", Minutes: 35},
				},
			},
			{
				Title: "Databases & Storage", Skills: []string{"AWS", "Databases"}, Weeks: 1,
				Resources: []TemplateResource{
					{Title: "AWS RDS vs DynamoDB", Type: "video", URL: "https://www.youtube.com/watch?v=sI-zciHAh-4", Minutes: 25},
					{Title: "AWS Database Services", Type: "video", URL: "https://www.youtube.com/watch?v=eMzCI7S1P9M", Minutes: 45},
				},
			},
		},
	},
	{
		ID:             "dsa-mastery",
		Title:          "Data Structures & Algorithms Mastery",
		Description:    "Complete guide to DSA for coding interviews and competitive programming",
		Category:       "computer-science",
		Difficulty:     "intermediate",
		EstimatedWeeks: 12,
		Modules: []TemplateModule{
			{
				Title: "Arrays & Strings", Skills: []string{"Algorithms"}, Weeks: 2,
				Resources: []TemplateResource{
					{Title: "Arrays Data Structure", Type: "video", URL: "https://www.youtube.com/watch?v=QJNwK2uJyGs", Minutes: 30},
					{Title: "Two Pointer Technique", Type: "video", URL: "https://www.youtube.com/watch?v=On03HWe2tZM", Minutes: 25},
					{Title: "Practice: LeetCode Easy Arrays", Type: "practice", URL: "https://leetcode.com/tag/array/", Minutes: 180},
				},
			},
			{
				Title: "Linked Lists", Skills: []string{"Algorithms"}, Weeks: 2,
				Resources: []TemplateResource{
					{Title: "Linked Lists Explained", Type: "video", URL: "https://www.youtube.com/watch?v=njTh_OwMljA", Minutes: 45},
					{Title: "Reverse a Linked List", Type: "video", URL: "https://www.youtube.com/watch?v=G0_I-ZF0S38", Minutes: 20},
					{Title: "Practice: LinkedList Problems", Type: "practice", URL: "https://leetcode.com/tag/linked-list/", Minutes: 180},
				},
			},
			{
				Title: "Stacks & Queues", Skills: []string{"Algorithms"}, Weeks: 2,
				Resources: []TemplateResource{
					{Title: "Stack & Queue Implementation", Type: "video", URL: "https://www.youtube.com/watch?v=wjI1WNcIntg", Minutes: 40},
					{Title: "Stack Applications", Type: "video", URL: "https://www.youtube.com/watch?v=O1KeXo8lE8A", Minutes: 30},
				},
			},
			{
				Title: "Trees & BST", Skills: []string{"Algorithms"}, Weeks: 2,
				Resources: []TemplateResource{
					{Title: "Binary Trees", Type: "video", URL: "https://www.youtube.com/watch?v=fAAZixBzIAI", Minutes: 50},
					{Title: "Tree Traversals", Type: "video", URL: "https://www.youtube.com/watch?v=9RHO6jU--GU", Minutes: 35},
					{Title: "Practice: Tree Problems", Type: "practice", URL: "https://leetcode.com/tag/tree/", Minutes: 240},
				},
			},
			{
				Title: "Graphs & Graph Algorithms", Skills: []string{"Algorithms"}, Weeks: 2,
				Resources: []TemplateResource{
					{Title: "Graph Theory Tutorial", Type: "video", URL: "https://www.youtube.com/watch?v=tWVWeAqZ0WU", Minutes: 60},
					{Title: "BFS vs DFS", Type: "video", URL: "https://www.youtube.com/watch?v=pcKY4hjDrxk", Minutes: 25},
					{Title: "Dijkstra's Algorithm", Type: "video", URL: "https://www.youtube.com/watch?v=pVfj6mxhdMw", Minutes: 30},
				},
			},
			{
				Title: "Dynamic Programming", Skills: []string{"Algorithms"}, Weeks: 2,
				Resources: []TemplateResource{
					{Title: "Dynamic Programming for Beginners", Type: "video", URL: "https://www.youtube.com/watch?v=oBt53YbR9Kk", Minutes: 90},
					{Title: "Common DP Patterns", Type: "video", URL: "https://www.youtube.com/watch?v=mBNrRy2_hVs", Minutes: 45},
					{Title: "Practice: DP Problems", Type: "practice", URL: "https://leetcode.com/tag/dynamic-programming/", Minutes: 300},
				},
			},
		},
	},
	{
		ID:             "python-full-stack",
		Title:          "Python Full Stack Developer",
		Description:    "Become a full stack developer using Python, FastAPI, and React",
		Category:       "web-development",
		Difficulty:     "intermediate",
		EstimatedWeeks: 16,
		Modules: []TemplateModule{
			{
				Title: "Python Fundamentals", Skills: []string{"Python"}, Weeks: 2,
				Resources: []TemplateResource{
					{Title: "Python Full Course", Type: "video", URL: "https://www.youtube.com/watch?v=_uQrJ0TkZlc", Minutes: 280},
					{Title: "OOP in Python", Type: "video", URL: "https://www.youtube.com/watch?v=Ej_02ICOIgs", Minutes: 45},
				},
			},
			{
				Title: "FastAPI Backend", Skills: []string{"Python", "REST APIs"}, Weeks: 3,
				Resources: []TemplateResource{
					{Title: "FastAPI Complete Course", Type: "video", URL: "https://www.youtube.com/watch?v=0sOvCWFmrtA", Minutes: 240},
					{Title: "FastAPI + MongoDB", Type: "video", URL: "https://www.youtube.com/watch?v=G8MsHbCHPXE", Minutes: 90},
				},
			},
			{
				Title: "React Frontend", Skills: []string{"React", "JavaScript"}, Weeks: 3,
				Resources: []TemplateResource{
					{Title: "React Full Course 2024", Type: "video", URL: "https://www.youtube.com/watch?v=bMknfKXIFA8", Minutes: 300},
					{Title: "React Hooks Deep Dive", Type: "video", URL: "https://www.youtube.com/watch?v=LlvBzyy-558", Minutes: 120},
				},
			},
			{
				Title: "Full Stack Integration", Skills: []string{"React", "REST APIs"}, Weeks: 4,
				Resources: []TemplateResource{
					{Title: "React + FastAPI Tutorial", Type: "video", URL: "https://www.youtube.com/watch?v=I0DqdRHepks", Minutes: 150},
					{Title: "Authentication & JWT", Type: "video", URL: "https://www.youtube.com/watch?v=6Vq3hNM7Txc", Minutes: 60},
				},
			},
		},
	},
	{
		ID:             "devops-engineer",
		Title:          "DevOps Engineer Path",
		Description:    "Master Docker, Kubernetes, CI/CD, and cloud infrastructure",
		Category:       "devops",
		Difficulty:     "advanced",
		EstimatedWeeks: 14,
		Modules: []TemplateModule{
			{
				Title: "Linux & Bash Scripting", Skills: []string{"Linux"}, Weeks: 2,
				Resources: []TemplateResource{
					{Title: "Linux for DevOps", Type: "video", URL: "https://www.youtube.com/watch?v=J2zquYPJbWY", Minutes: 180},
					{Title: "Bash Scripting Tutorial", Type: "video", URL: "https://www.youtube.com/watch?v=e7BufAVwDiM", Minutes: 90},
				},
			},
			{
				Title: "Docker & Containers", Skills: []string{"Docker"}, Weeks: 3,
				Resources: []TemplateResource{
					{Title: "Docker Complete Course", Type: "video", URL: "https://www.youtube.com/watch?v=fqMOX6JJhGo", Minutes: 240},
					{Title: "Docker Compose Tutorial", Type: "video", URL: "https://www.youtube.com/watch?v=SXwC9fSwct8", Minutes: 60},
				},
			},
			{
				Title: "Kubernetes", Skills: []string{"Kubernetes"}, Weeks: 3,
				Resources: []TemplateResource{
					{Title: "Kubernetes Full Course", Type: "video", URL: "https://www.youtube.com/watch?v=X48VuDVv0do", Minutes: 240},
					{Title: "Kubernetes Hands-On", Type: "video", URL: "https://www.youtube.com/watch?v=d6WC5n9G_sM", Minutes: 120},
				},
			},
			{
				Title: "CI/CD Pipelines", Skills: []string{"CI/CD"}, Weeks: 3,
				Resources: []TemplateResource{
					{Title: "CI/CD Explained", Type: "video", URL: "https://www.youtube.com/watch?v=scEDHsr3APg", Minutes: 45},
					{Title: "GitHub Actions Tutorial", Type: "video", URL: "https://www.youtube.com/watch?v=R8_veQiYBjI", Minutes: 90},
				},
			},
			{
				Title: "Infrastructure as Code", Skills: []string{"Terraform"}, Weeks: 3,
				Resources: []TemplateResource{
					{Title: "Terraform Full Course", Type: "video", URL: "https://www.youtube.com/watch?v=7xngnjfIlK4", Minutes: 120},
					{Title: "Ansible for DevOps", Type: "video", URL: "https://www.youtube.com/watch?v=goclfp6a2IQ", Minutes: 90},
				},
			},
		},
	},
	{
		ID:             "ml-engineer",
		Title:          "Machine Learning Engineer",
		Description:    "From basics to deployment of ML models",
		Category:       "ai-ml",
		Difficulty:     "advanced",
		EstimatedWeeks: 20,
		Modules: []TemplateModule{
			{
				Title: "Python for Data Science", Skills: []string{"Python", "Data Analysis"}, Weeks: 3,
				Resources: []TemplateResource{
					{Title: "Python Data Science Course", Type: "video", URL: "https://www.youtube.com/watch?v=LHBE6Q9XlzI", Minutes: 180},
					{Title: "Pandas Complete Tutorial", Type: "video", URL: "https://www.youtube.com/watch?v=vmEHCJofslg", Minutes: 60},
				},
			},
			{
				Title: "Machine Learning Algorithms", Skills: []string{"Machine Learning"}, Weeks: 4,
				Resources: []TemplateResource{
					{Title: "Machine Learning Full Course", Type: "video", URL: "https://www.youtube.com/watch?v=Gv9_4yMHFhI", Minutes: 300},
					{Title: "Scikit-learn Tutorial", Type: "video", URL: "https://www.youtube.com/watch?v=pqNCD_5r0IU", Minutes: 120},
				},
			},
			{
				Title: "Deep Learning", Skills: []string{"Machine Learning"}, Weeks: 5,
				Resources: []TemplateResource{
					{Title: "Deep Learning Fundamentals", Type: "video", URL: "https://www.youtube.com/watch?v=aircAruvnKk", Minutes: 240},
					{Title: "PyTorch Full Course", Type: "video", URL: "https://www.youtube.com/watch?v=V_xro1bcAuA", Minutes: 300},
				},
			},
			{
				Title: "Computer Vision & NLP", Skills: []string{"Machine Learning"}, Weeks: 4,
				Resources: []TemplateResource{
					{Title: "Computer Vision Course", Type: "video", URL: "https://www.youtube.com/watch?v=01sAkU_NvOY", Minutes: 180},
					{Title: "NLP with Transformers", Type: "video", URL: "https://www.youtube.com/watch?v=QEaBAZQCtwE", Minutes: 120},
				},
			},
			{
				Title: "MLOps & Deployment", Skills: []string{"Machine Learning", "CI/CD"}, Weeks: 4,
				Resources: []TemplateResource{
					{Title: "MLOps Fundamentals", Type: "video", URL: "https://www.youtube.com/watch?v=sUzWL8yzsCg", Minutes: 90},
					{Title: "Deploy ML Models", Type: "video", URL: "https://www.youtube.com/watch?v=bjsJOl8gz5k", Minutes: 75},
				},
			},
		},
	},
	{
		ID:             "cybersecurity-fundamentals",
		Title:          "Cybersecurity Fundamentals",
		Description:    "Learn ethical hacking, network security, and penetration testing",
		Category:       "security",
		Difficulty:     "intermediate",
		EstimatedWeeks: 12,
		Modules: []TemplateModule{
			{
				Title: "Security Basics", Skills: []string{"Security"}, Weeks: 2,
				Resources: []TemplateResource{
					{Title: "Cybersecurity Full Course", Type: "video", URL: "https://www.youtube.com/watch?v=U_P23SqJaDc", Minutes: 180},
					{Title: "Network Security Basics", Type: "video", URL: "https://www.youtube.com/watch?v=qiQR5rTSshw", Minutes: 90},
				},
			},
			{
				Title: "Ethical Hacking", Skills: []string{"Security"}, Weeks: 3,
				Resources: []TemplateResource{
					{Title: "Ethical Hacking Course", Type: "video", URL: "https://www.youtube.com/watch?v=3Kq1MIfTWCE", Minutes: 240},
					{Title: "Kali Linux Tutorial", Type: "video", URL: "https://www.youtube.com/watch?v=lZAoFs75_cs", Minutes: 120},
				},
			},
			{
				Title: "Web Application Security", Skills: []string{"Security"}, Weeks: 3,
				Resources: []TemplateResource{
					{Title: "Web Security Fundamentals", Type: "video", URL: "https://www.youtube.com/watch?v=WlmKwIe9z1Q", Minutes: 90},
					{Title: "OWASP Top 10 Explained", Type: "video", URL: "https://www.youtube.com/watch?v=avFR_Af0KGk", Minutes: 60},
				},
			},
			{
				Title: "Security Tools & Practice", Skills: []string{"Security"}, Weeks: 4,
				Resources: []TemplateResource{
					{Title: "Burp Suite Tutorial", Type: "video", URL: "https://www.youtube.com/watch?v=h2duGBZLEek", Minutes: 75},
					{Title: "Metasploit Framework", Type: "video", URL: "https://www.youtube.com/watch?v=8lR27r8Y_ik", Minutes: 90},
				},
			},
		},
	},
	{
		ID:             "blockchain-web3",
		Title:          "Blockchain & Web3 Development",
		Description:    "Smart contracts, DApps, and blockchain fundamentals",
		Category:       "blockchain",
		Difficulty:     "advanced",
		EstimatedWeeks: 14,
		Modules: []TemplateModule{
			{
				Title: "Blockchain Basics", Skills: []string{"Blockchain"}, Weeks: 2,
				Resources: []TemplateResource{
					{Title: "Blockchain Explained", Type: "video", URL: "https://www.youtube.com/watch?v=qOVAbKKSH10", Minutes: 120},
					{Title: "Cryptocurrency Fundamentals", Type: "video", URL: "https://www.youtube.com/watch?v=1YyAzVmP9xQ", Minutes: 60},
				},
			},
			{
				Title: "Solidity & Smart Contracts", Skills: []string{"Solidity"}, Weeks: 4,
				Resources: []TemplateResource{
					{Title: "Solidity Full Course", Type: "video", URL: "https://www.youtube.com/watch?v=gyMwXuJrbJQ", Minutes: 240},
					{Title: "Smart Contract Security", Type: "video", URL: "https://www.youtube.com/watch?v=TmZ8gH-toX0", Minutes: 90},
				},
			},
			{
				Title: "DApp Development", Skills: []string{"Solidity", "JavaScript"}, Weeks: 4,
				Resources: []TemplateResource{
					{Title: "Web3 JavaScript Tutorial", Type: "video", URL: "https://www.youtube.com/watch?v=t3wM5903ty0", Minutes: 150},
					{Title: "Build a Full Stack DApp", Type: "video", URL: "https://www.youtube.com/watch?v=coQ5dg8wM2o", Minutes: 180},
				},
			},
			{
				Title: "DeFi, NFTs & Deployment", Skills: []string{"Solidity"}, Weeks: 4,
				Resources: []TemplateResource{
					{Title: "DeFi Explained", Type: "video", URL: "https://www.youtube.com/watch?v=k9HYC0EJU6E", Minutes: 60},
					{Title: "NFT Smart Contracts", Type: "video", URL: "https://www.youtube.com/watch?v=YPbgjPPC1d0", Minutes: 90},
				},
			},
		},
	},
}
